package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/requestcontext"

	auditmetrics "meridian/internal/audit/metrics"
)

// WriteMode names the ledger's persistence-failure policy. The sourced
// behavior is best-effort: business operations proceed even when their audit
// record failed to persist. Compliance-sensitive deployments flip to strict
// after product sign-off.
type WriteMode string

const (
	// WriteModeBestEffort swallows store errors after logging them to the
	// operator channel and counting them in metrics.
	WriteModeBestEffort WriteMode = "best-effort"
	// WriteModeStrict surfaces store errors to the caller, failing the
	// originating operation.
	WriteModeStrict WriteMode = "strict"
)

// StreamPublisher fans appended events out to an external stream
// (compliance export, SIEM). Always best-effort; never blocks the ledger.
type StreamPublisher interface {
	Publish(ctx context.Context, event Event)
}

// Ledger is the append-only audit service. All reads are composed over the
// store's newest-first snapshot; AnonymizeUser is the single mutation path.
type Ledger struct {
	store   Store
	logger  *slog.Logger
	metrics *auditmetrics.Metrics
	mode    WriteMode
	stream  StreamPublisher
}

// Option configures the Ledger.
type Option func(*Ledger)

// WithWriteMode sets the persistence-failure policy.
func WithWriteMode(mode WriteMode) Option {
	return func(l *Ledger) { l.mode = mode }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *auditmetrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithStream sets an optional best-effort stream publisher.
func WithStream(p StreamPublisher) Option {
	return func(l *Ledger) { l.stream = p }
}

// NewLedger constructs the ledger. The default write mode is best-effort,
// matching the platform's availability-over-strict-auditability stance.
func NewLedger(store Store, logger *slog.Logger, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "audit store is required")
	}
	l := &Ledger{
		store:  store,
		logger: logger,
		mode:   WriteModeBestEffort,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Log assigns an ID and timestamp to the entry and appends it. Under
// best-effort mode persistence failures are logged to the operator channel
// and swallowed so the calling business operation can proceed; under strict
// mode they are returned and the caller must fail its operation.
func (l *Ledger) Log(ctx context.Context, entry Entry) error {
	event := Event{
		ID:            uuid.NewString(),
		Timestamp:     requestcontext.Now(ctx),
		Event:         entry.Event,
		UserID:        entry.UserID,
		ResourceID:    entry.ResourceID,
		ResourceType:  entry.ResourceType,
		Context:       entry.Context,
		Action:        entry.Action,
		PreviousState: entry.PreviousState,
		NewState:      entry.NewState,
		Metadata:      entry.Metadata,
	}

	if err := l.store.Append(ctx, event); err != nil {
		if l.metrics != nil {
			l.metrics.IncWriteFailures()
		}
		if l.logger != nil {
			l.logger.ErrorContext(ctx, "audit write failed",
				"event", event.Event,
				"resource_id", event.ResourceID,
				"user_id", event.UserID,
				"write_mode", string(l.mode),
				"error", err,
			)
		}
		if l.mode == WriteModeStrict {
			return dErrors.Wrap(err, dErrors.CodeInternal, "audit persistence failed")
		}
		return nil
	}

	if l.metrics != nil {
		l.metrics.IncEventsAppended()
	}
	if l.stream != nil {
		l.stream.Publish(ctx, event)
	}
	return nil
}

// All returns every ledger event, newest-first.
func (l *Ledger) All(ctx context.Context) ([]Event, error) {
	return l.store.All(ctx)
}

// ByResource returns events for one resource instance, newest-first.
func (l *Ledger) ByResource(ctx context.Context, resourceID string) ([]Event, error) {
	return l.Search(ctx, Filters{ResourceID: resourceID})
}

// ByUser returns events recorded against one user, newest-first.
func (l *Ledger) ByUser(ctx context.Context, userID string) ([]Event, error) {
	return l.Search(ctx, Filters{UserID: userID})
}

// ByContext returns events for one domain context, newest-first.
func (l *Ledger) ByContext(ctx context.Context, domainContext string) ([]Event, error) {
	return l.Search(ctx, Filters{Context: domainContext})
}

// ByEvent returns events with an exact "{resourceType}.{action}" name.
func (l *Ledger) ByEvent(ctx context.Context, event string) ([]Event, error) {
	return l.Search(ctx, Filters{Event: event})
}

// ByDateRange returns events whose timestamps fall within [from, to].
func (l *Ledger) ByDateRange(ctx context.Context, from, to time.Time) ([]Event, error) {
	return l.Search(ctx, Filters{From: from, To: to})
}

// Search applies all supplied filters as an AND over the full snapshot.
func (l *Ledger) Search(ctx context.Context, filters Filters) ([]Event, error) {
	all, err := l.store.All(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "audit read failed")
	}
	out := make([]Event, 0, len(all))
	for _, e := range all {
		if filters.matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// AnonymizeUser rewrites every event bearing userID to a freshly generated
// redacted identifier and stamps metadata.anonymized. This is the ledger's
// only mutation path; the store makes the rewrite atomic for readers.
func (l *Ledger) AnonymizeUser(ctx context.Context, userID string) error {
	if userID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}
	redacted := redactedUserID(uuid.NewString())
	now := requestcontext.Now(ctx)

	rewritten, err := l.store.AnonymizeUser(ctx, userID, redacted, now)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "audit anonymization failed")
	}

	if l.metrics != nil {
		l.metrics.IncAnonymizationRuns()
	}
	if l.logger != nil {
		l.logger.InfoContext(ctx, "audit trail anonymized",
			"events_rewritten", rewritten,
		)
	}
	return nil
}
