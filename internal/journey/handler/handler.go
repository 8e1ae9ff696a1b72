// Package handler wires journey endpoints to the journey service. The
// handler stays thin: it resolves the viewer from the request context,
// decodes input, and translates domain errors to the JSON envelope.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "meridian/pkg/domain"
	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"

	"meridian/internal/domain"
	"meridian/internal/journey/service"
	"meridian/internal/rbac"
	"meridian/internal/workflow"
)

// Service is the slice of the journey service the handler consumes.
type Service interface {
	Create(ctx context.Context, viewer service.Viewer, institutionID id.InstitutionID, ownerID id.UserID, title string) (*domain.Journey, error)
	Get(ctx context.Context, viewer service.Viewer, journeyID id.JourneyID) (*domain.Journey, error)
	List(ctx context.Context, viewer service.Viewer) ([]domain.Journey, error)
	AvailableTransitions(ctx context.Context, viewer service.Viewer, journeyID id.JourneyID) ([]service.TransitionOption, error)
	Transition(ctx context.Context, viewer service.Viewer, journeyID id.JourneyID, event workflow.Event) (*domain.Journey, error)
	PendingApproval(ctx context.Context, viewer service.Viewer, journeyID id.JourneyID) (*service.PendingStep, error)
	RecordApproval(ctx context.Context, viewer service.Viewer, journeyID id.JourneyID, order int) (*service.PendingStep, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts journey endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/journeys", h.HandleCreate)
	r.Get("/journeys", h.HandleList)
	r.Get("/journeys/{journeyID}", h.HandleGet)
	r.Get("/journeys/{journeyID}/transitions", h.HandleAvailableTransitions)
	r.Post("/journeys/{journeyID}/transitions", h.HandleTransition)
	r.Get("/journeys/{journeyID}/approval", h.HandlePendingApproval)
	r.Post("/journeys/{journeyID}/approvals", h.HandleRecordApproval)
}

// CreateRequest is the POST /journeys body.
type CreateRequest struct {
	Title         string `json:"title"`
	OwnerID       string `json:"owner_id"`
	InstitutionID string `json:"institution_id,omitempty"`
}

// TransitionRequest is the POST /journeys/{id}/transitions body.
type TransitionRequest struct {
	Event string `json:"event"`
}

// ApprovalRequest is the POST /journeys/{id}/approvals body.
type ApprovalRequest struct {
	Order int `json:"order"`
}

// viewerFrom resolves the caller's identity and (role, context) pair seeded
// by the auth middleware.
func viewerFrom(ctx context.Context) (service.Viewer, error) {
	actor := requestcontext.Actor(ctx)
	if actor.IsNil() {
		return service.Viewer{}, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return service.Viewer{
		UserID:  actor,
		Role:    rbac.Role(requestcontext.Role(ctx)),
		Context: rbac.DomainContext(requestcontext.DomainContext(ctx)),
	}, nil
}

func journeyIDFrom(r *http.Request) (id.JourneyID, error) {
	return id.ParseJourneyID(chi.URLParam(r, "journeyID"))
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := viewerFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[CreateRequest](w, r, h.logger)
	if !ok {
		return
	}

	ownerID, err := id.ParseUserID(req.OwnerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var institutionID id.InstitutionID
	if req.InstitutionID != "" {
		institutionID, err = id.ParseInstitutionID(req.InstitutionID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	} else {
		institutionID = requestcontext.Institution(ctx)
	}

	journey, err := h.service.Create(ctx, viewer, institutionID, ownerID, req.Title)
	if err != nil {
		h.logError(ctx, "journey creation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, journey)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := viewerFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	journeys, err := h.service.List(ctx, viewer)
	if err != nil {
		h.logError(ctx, "journey list failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, journeys)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := viewerFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	journeyID, err := journeyIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	journey, err := h.service.Get(ctx, viewer, journeyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, journey)
}

func (h *Handler) HandleAvailableTransitions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := viewerFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	journeyID, err := journeyIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	options, err := h.service.AvailableTransitions(ctx, viewer, journeyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, options)
}

func (h *Handler) HandleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := viewerFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	journeyID, err := journeyIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[TransitionRequest](w, r, h.logger)
	if !ok {
		return
	}
	if req.Event == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "event is required"))
		return
	}

	journey, err := h.service.Transition(ctx, viewer, journeyID, workflow.Event(req.Event))
	if err != nil {
		h.logError(ctx, "journey transition failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, journey)
}

func (h *Handler) HandlePendingApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := viewerFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	journeyID, err := journeyIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	pending, err := h.service.PendingApproval(ctx, viewer, journeyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pending)
}

func (h *Handler) HandleRecordApproval(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	viewer, err := viewerFrom(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	journeyID, err := journeyIDFrom(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[ApprovalRequest](w, r, h.logger)
	if !ok {
		return
	}

	pending, err := h.service.RecordApproval(ctx, viewer, journeyID, req.Order)
	if err != nil {
		h.logError(ctx, "approval recording failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, pending)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if h.logger == nil {
		return
	}
	// Business rejections are the caller's problem; only server-side
	// failures get the operator's attention.
	if dErrors.CodeOf(err) != dErrors.CodeInternal {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
