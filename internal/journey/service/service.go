// Package service orchestrates the journey lifecycle: it is the sanctioned
// caller of the workflow engine and the only code path that writes a
// journey's status back to its store.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/sentinel"
	"meridian/pkg/requestcontext"

	"meridian/internal/approval"
	"meridian/internal/approval/progress"
	"meridian/internal/audit"
	"meridian/internal/domain"
	journeymetrics "meridian/internal/journey/metrics"
	"meridian/internal/rbac"
	"meridian/internal/visibility"
	"meridian/internal/workflow"
)

// JourneyStore persists journey records. Execute must hold a per-journey
// lock (mutex or FOR UPDATE) across both callbacks so concurrent transitions
// on the same journey serialize.
type JourneyStore interface {
	Create(ctx context.Context, journey *domain.Journey) error
	FindByID(ctx context.Context, journeyID id.JourneyID) (*domain.Journey, error)
	List(ctx context.Context) ([]domain.Journey, error)
	Execute(ctx context.Context, journeyID id.JourneyID, validate func(*domain.Journey) error, mutate func(*domain.Journey)) (*domain.Journey, error)
}

// GrantStore resolves advisor delegation records. A nil grant means the
// advisor has no access on record.
type GrantStore interface {
	GrantFor(ctx context.Context, advisorID id.UserID) (*domain.AdvisorGrant, error)
}

// AuditLogger is the slice of the audit ledger the service writes to.
type AuditLogger interface {
	Log(ctx context.Context, entry audit.Entry) error
}

// Viewer identifies the caller: who they are and the (role, context) pair
// the identity layer resolved for them.
type Viewer struct {
	UserID  id.UserID
	Role    rbac.Role
	Context rbac.DomainContext
}

// TransitionOption is one event the viewer may execute from the journey's
// current status, with its display label.
type TransitionOption struct {
	Event workflow.Event `json:"event"`
	Label string         `json:"label"`
}

// PendingStep reports where a journey stands in its approval chain.
type PendingStep struct {
	ChainID  string         `json:"chain_id"`
	Step     *approval.Step `json:"step,omitempty"`
	Complete bool           `json:"complete"`
}

// Service owns journey records and coordinates the workflow engine, the
// approval resolver, and the audit ledger.
type Service struct {
	journeys JourneyStore
	grants   GrantStore
	gate     *rbac.Gate
	engine   *workflow.Engine
	resolver *approval.Resolver
	progress progress.Store
	ledger   AuditLogger
	logger   *slog.Logger
	metrics  *journeymetrics.Metrics
	tracer   trace.Tracer
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *journeymetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// New constructs the service. Engine, resolver, progress store, and ledger
// are mandatory collaborators; observability is optional.
func New(
	journeys JourneyStore,
	grants GrantStore,
	gate *rbac.Gate,
	engine *workflow.Engine,
	resolver *approval.Resolver,
	progressStore progress.Store,
	ledger AuditLogger,
	opts ...Option,
) (*Service, error) {
	if journeys == nil || gate == nil || engine == nil || resolver == nil || progressStore == nil || ledger == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "journey service is missing a required collaborator")
	}
	s := &Service{
		journeys: journeys,
		grants:   grants,
		gate:     gate,
		engine:   engine,
		resolver: resolver,
		progress: progressStore,
		ledger:   ledger,
		tracer:   otel.Tracer("meridian/internal/journey"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create opens a new journey at the workflow's initial status.
func (s *Service) Create(ctx context.Context, viewer Viewer, institutionID id.InstitutionID, ownerID id.UserID, title string) (*domain.Journey, error) {
	if !s.gate.HasPermission(viewer.Context, viewer.Role, rbac.PermissionWrite, rbac.ResourceJourney) {
		return nil, dErrors.Newf(dErrors.CodePermissionDenied, "role %s may not create journeys", viewer.Role)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "journey title is required")
	}
	if ownerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "journey owner is required")
	}

	now := requestcontext.Now(ctx)
	journey := &domain.Journey{
		ID:            id.JourneyID(uuid.New()),
		InstitutionID: institutionID,
		OwnerID:       ownerID,
		Title:         title,
		Status:        s.engine.InitialStatus(),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.journeys.Create(ctx, journey); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "journey already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create journey")
	}

	s.audit(ctx, audit.Entry{
		Event:        audit.EventName(string(rbac.ResourceJourney), "created"),
		UserID:       viewer.UserID.String(),
		ResourceID:   journey.ID.String(),
		ResourceType: string(rbac.ResourceJourney),
		Context:      string(viewer.Context),
		Action:       string(rbac.PermissionWrite),
		NewState:     string(journey.Status),
	})
	if s.metrics != nil {
		s.metrics.IncrementJourneyCreated()
	}
	return journey, nil
}

// Get returns one journey if the viewer is entitled to see it. Journeys the
// visibility filter hides are reported as not found rather than forbidden,
// so their existence does not leak.
func (s *Service) Get(ctx context.Context, viewer Viewer, journeyID id.JourneyID) (*domain.Journey, error) {
	if journeyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "journey id is required")
	}
	journey, err := s.journeys.FindByID(ctx, journeyID)
	if err != nil {
		return nil, wrapJourneyErr(err)
	}

	visible, err := s.visibleTo(ctx, viewer, []domain.Journey{*journey})
	if err != nil {
		return nil, err
	}
	if len(visible) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "journey not found")
	}
	return journey, nil
}

// List returns the journeys the viewer's role is entitled to see.
func (s *Service) List(ctx context.Context, viewer Viewer) ([]domain.Journey, error) {
	journeys, err := s.journeys.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list journeys")
	}
	return s.visibleTo(ctx, viewer, journeys)
}

// visibleTo narrows journeys to what the viewer may see. Client-side roles
// go through the sharing-aware visibility filter; staff and admin roles are
// governed by the permission matrix's READ grant instead, since client
// sharing flags do not apply to them.
func (s *Service) visibleTo(ctx context.Context, viewer Viewer, journeys []domain.Journey) ([]domain.Journey, error) {
	if viewer.Context == rbac.ContextB2C {
		grant, err := s.grantFor(ctx, viewer)
		if err != nil {
			return nil, err
		}
		return visibility.FilterJourneys(journeys, viewer.Role, grant), nil
	}
	if s.gate.HasPermission(viewer.Context, viewer.Role, rbac.PermissionRead, rbac.ResourceJourney) {
		return journeys, nil
	}
	return []domain.Journey{}, nil
}

// AvailableTransitions lists the events the viewer may execute from the
// journey's current status, with display labels, in table order.
func (s *Service) AvailableTransitions(ctx context.Context, viewer Viewer, journeyID id.JourneyID) ([]TransitionOption, error) {
	journey, err := s.Get(ctx, viewer, journeyID)
	if err != nil {
		return nil, err
	}

	events := s.engine.AvailableTransitions(journey.Status, viewer.Context, viewer.Role)
	options := make([]TransitionOption, 0, len(events))
	for _, event := range events {
		options = append(options, TransitionOption{
			Event: event,
			Label: s.engine.TransitionLabel(event),
		})
	}
	return options, nil
}

// Transition executes one workflow event against the journey. The engine
// computes the next status; the store serializes the write per journey; the
// ledger records the change with its before and after states.
func (s *Service) Transition(ctx context.Context, viewer Viewer, journeyID id.JourneyID, event workflow.Event) (*domain.Journey, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "journey.Transition",
		trace.WithAttributes(
			attribute.String("journey.id", journeyID.String()),
			attribute.String("workflow.event", string(event)),
			attribute.String("viewer.role", string(viewer.Role)),
		),
	)
	defer span.End()

	if journeyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "journey id is required")
	}

	now := requestcontext.Now(ctx)
	var previous, next workflow.Status
	journey, err := s.journeys.Execute(ctx, journeyID,
		func(j *domain.Journey) error {
			previous = j.Status
			resolved, err := s.engine.ExecuteTransition(j.Status, event, viewer.Context, viewer.Role)
			if err != nil {
				return err
			}
			next = resolved
			return nil
		},
		func(j *domain.Journey) {
			j.Status = next
			j.UpdatedAt = now
		},
	)
	if err != nil {
		s.recordTransitionFailure(ctx, viewer, journeyID, event, err)
		return nil, wrapJourneyErr(err)
	}

	s.audit(ctx, audit.Entry{
		Event:         audit.EventName(string(rbac.ResourceJourney), string(journey.Status)),
		UserID:        viewer.UserID.String(),
		ResourceID:    journey.ID.String(),
		ResourceType:  string(rbac.ResourceJourney),
		Context:       string(viewer.Context),
		Action:        string(rbac.PermissionWrite),
		PreviousState: string(previous),
		NewState:      string(journey.Status),
		Metadata:      map[string]any{"workflow_event": string(event)},
	})
	if s.metrics != nil {
		s.metrics.IncrementTransitionExecuted()
		s.metrics.ObserveTransition(start)
	}
	return journey, nil
}

// PendingApproval reports the next required sign-off on the journey's chain,
// or completion when every required step has been recorded. Journeys whose
// resource type has no chain configured are complete by definition.
func (s *Service) PendingApproval(ctx context.Context, viewer Viewer, journeyID id.JourneyID) (*PendingStep, error) {
	journey, err := s.Get(ctx, viewer, journeyID)
	if err != nil {
		return nil, err
	}

	chain := s.resolver.ChainFor(rbac.ResourceJourney, journey.InstitutionID)
	if chain == nil {
		return &PendingStep{Complete: true}, nil
	}

	completed, err := s.progress.Completed(ctx, string(rbac.ResourceJourney), journey.ID.String())
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load approval progress")
	}

	if chain.IsComplete(completed) {
		return &PendingStep{ChainID: chain.ID, Complete: true}, nil
	}

	done := make(map[int]struct{}, len(completed))
	for _, order := range completed {
		done[order] = struct{}{}
	}
	for _, order := range chain.RequiredOrders() {
		if _, ok := done[order]; ok {
			continue
		}
		for i := range chain.Steps {
			if chain.Steps[i].Order == order {
				step := chain.Steps[i]
				return &PendingStep{ChainID: chain.ID, Step: &step}, nil
			}
		}
	}
	// Unreachable when IsComplete is false, kept for totality.
	return &PendingStep{ChainID: chain.ID, Complete: true}, nil
}

// RecordApproval marks one chain step as signed off by the viewer. The
// viewer's role must match the step's role; recording the same order twice
// is idempotent.
func (s *Service) RecordApproval(ctx context.Context, viewer Viewer, journeyID id.JourneyID, order int) (*PendingStep, error) {
	ctx, span := s.tracer.Start(ctx, "journey.RecordApproval",
		trace.WithAttributes(
			attribute.String("journey.id", journeyID.String()),
			attribute.Int("approval.order", order),
		),
	)
	defer span.End()

	journey, err := s.Get(ctx, viewer, journeyID)
	if err != nil {
		return nil, err
	}

	chain := s.resolver.ChainFor(rbac.ResourceJourney, journey.InstitutionID)
	if chain == nil {
		return nil, dErrors.New(dErrors.CodeNotFound, "no approval chain configured for journeys")
	}

	var step *approval.Step
	for i := range chain.Steps {
		if chain.Steps[i].Order == order {
			step = &chain.Steps[i]
			break
		}
	}
	if step == nil {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "approval chain %s has no step with order %d", chain.ID, order)
	}
	if step.Role != viewer.Role {
		return nil, dErrors.Newf(dErrors.CodePermissionDenied, "step %d requires role %s", order, step.Role)
	}

	if err := s.progress.Record(ctx, string(rbac.ResourceJourney), journey.ID.String(), order); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record approval")
	}

	s.audit(ctx, audit.Entry{
		Event:        audit.EventName(string(rbac.ResourceJourney), "approval_recorded"),
		UserID:       viewer.UserID.String(),
		ResourceID:   journey.ID.String(),
		ResourceType: string(rbac.ResourceJourney),
		Context:      string(viewer.Context),
		Action:       string(rbac.PermissionApprove),
		Metadata:     map[string]any{"chain_id": chain.ID, "order": order, "step": step.Label},
	})
	if s.metrics != nil {
		s.metrics.IncrementApprovalRecorded()
	}

	return s.PendingApproval(ctx, viewer, journeyID)
}

// grantFor resolves the advisor grant when the viewer is an advisor. Other
// roles never consult grants.
func (s *Service) grantFor(ctx context.Context, viewer Viewer) (*domain.AdvisorGrant, error) {
	if viewer.Role != rbac.RoleAdvisor || s.grants == nil {
		return nil, nil
	}
	grant, err := s.grants.GrantFor(ctx, viewer.UserID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load advisor grant")
	}
	return grant, nil
}

// audit writes a ledger entry. Failure policy lives inside the ledger; a
// strict-mode failure is logged here but does not unwind the completed
// business operation, because the state write has already been committed.
func (s *Service) audit(ctx context.Context, entry audit.Entry) {
	if err := s.ledger.Log(ctx, entry); err != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "journey audit entry rejected",
			"event", entry.Event,
			"resource_id", entry.ResourceID,
			"error", err,
		)
	}
}

func (s *Service) recordTransitionFailure(ctx context.Context, viewer Viewer, journeyID id.JourneyID, event workflow.Event, err error) {
	if s.metrics != nil {
		switch {
		case dErrors.HasCode(err, dErrors.CodePermissionDenied):
			s.metrics.IncrementTransitionDenied()
		case dErrors.HasCode(err, dErrors.CodeInvalidTransition):
			s.metrics.IncrementTransitionInvalid()
		}
	}
	if s.logger != nil && dErrors.HasCode(err, dErrors.CodePermissionDenied) {
		s.logger.WarnContext(ctx, "journey transition denied",
			"journey_id", journeyID.String(),
			"workflow_event", string(event),
			"role", string(viewer.Role),
			"context", string(viewer.Context),
		)
	}
}

func wrapJourneyErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "journey not found")
	}
	var domainErr *dErrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "journey store failure")
}
