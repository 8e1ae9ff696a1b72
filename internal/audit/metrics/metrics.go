package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit ledger. Write failures are
// the critical signal: under best-effort mode they are the only external
// evidence that audit records were lost.
type Metrics struct {
	EventsAppended    prometheus.Counter
	WriteFailures     prometheus.Counter
	AnonymizationRuns prometheus.Counter
}

// New creates a Metrics instance with all audit ledger metrics registered.
func New() *Metrics {
	return &Metrics{
		EventsAppended: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_events_appended_total",
			Help: "Total number of audit events appended to the ledger",
		}),
		WriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_write_failures_total",
			Help: "Total number of audit persistence failures (swallowed under best-effort mode)",
		}),
		AnonymizationRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "meridian_audit_anonymization_runs_total",
			Help: "Total number of GDPR anonymization operations",
		}),
	}
}

func (m *Metrics) IncEventsAppended()    { m.EventsAppended.Inc() }
func (m *Metrics) IncWriteFailures()     { m.WriteFailures.Inc() }
func (m *Metrics) IncAnonymizationRuns() { m.AnonymizationRuns.Inc() }
