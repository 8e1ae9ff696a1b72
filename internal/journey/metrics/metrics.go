package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the journey module. Denied transitions
// are tracked separately from invalid ones: a spike in denials points at a
// permission misconfiguration, a spike in invalid transitions at stale
// clients.
type Metrics struct {
	JourneysCreated     prometheus.Counter
	TransitionsExecuted prometheus.Counter
	TransitionsDenied   prometheus.Counter
	TransitionsInvalid  prometheus.Counter
	ApprovalsRecorded   prometheus.Counter
	TransitionDuration  prometheus.Histogram
}

// New creates a Metrics instance with all journey module metrics registered.
func New() *Metrics {
	return &Metrics{
		JourneysCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_journeys_created_total",
			Help: "Total number of journeys created",
		}),
		TransitionsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_journey_transitions_total",
			Help: "Total number of successful journey status transitions",
		}),
		TransitionsDenied: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_journey_transitions_denied_total",
			Help: "Total number of journey transitions rejected by the permission gate",
		}),
		TransitionsInvalid: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_journey_transitions_invalid_total",
			Help: "Total number of journey transition attempts with no table entry",
		}),
		ApprovalsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_journey_approvals_recorded_total",
			Help: "Total number of approval steps recorded against journeys",
		}),
		TransitionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "meridian_journey_transition_duration_seconds",
			Help:    "Duration of journey transition operations including persistence",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementJourneyCreated()     { m.JourneysCreated.Inc() }
func (m *Metrics) IncrementTransitionExecuted() { m.TransitionsExecuted.Inc() }
func (m *Metrics) IncrementTransitionDenied()   { m.TransitionsDenied.Inc() }
func (m *Metrics) IncrementTransitionInvalid()  { m.TransitionsInvalid.Inc() }
func (m *Metrics) IncrementApprovalRecorded()   { m.ApprovalsRecorded.Inc() }

// ObserveTransition records the duration of a Transition operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveTransition(start time.Time) {
	m.TransitionDuration.Observe(time.Since(start).Seconds())
}
