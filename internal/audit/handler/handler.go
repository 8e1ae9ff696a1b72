// Package handler exposes ledger queries and the GDPR anonymization
// operation. Access is gated on the audit resource: reads need READ,
// anonymization needs CONFIGURE.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"

	"meridian/internal/audit"
	"meridian/internal/rbac"
)

// Ledger is the slice of the audit ledger the handler consumes.
type Ledger interface {
	Search(ctx context.Context, filters audit.Filters) ([]audit.Event, error)
	AnonymizeUser(ctx context.Context, userID string) error
}

type Handler struct {
	ledger Ledger
	gate   *rbac.Gate
	logger *slog.Logger
}

func New(ledger Ledger, gate *rbac.Gate, logger *slog.Logger) *Handler {
	return &Handler{ledger: ledger, gate: gate, logger: logger}
}

// Register mounts audit endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/events", h.HandleSearch)
	r.Post("/audit/anonymize", h.HandleAnonymize)
}

// AnonymizeRequest is the POST /audit/anonymize body.
type AnonymizeRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) authorize(ctx context.Context, action rbac.Permission) error {
	if requestcontext.Actor(ctx).IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	role := rbac.Role(requestcontext.Role(ctx))
	dc := rbac.DomainContext(requestcontext.DomainContext(ctx))
	if !h.gate.HasPermission(dc, role, action, rbac.ResourceAudit) {
		return dErrors.Newf(dErrors.CodePermissionDenied, "role %s may not %s the audit ledger", role, action)
	}
	return nil
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.authorize(ctx, rbac.PermissionRead); err != nil {
		httputil.WriteError(w, err)
		return
	}

	filters, err := filtersFromQuery(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	events, err := h.ledger.Search(ctx, filters)
	if err != nil {
		h.logger.ErrorContext(ctx, "audit search failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

func (h *Handler) HandleAnonymize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.authorize(ctx, rbac.PermissionConfigure); err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.Decode[AnonymizeRequest](w, r, h.logger)
	if !ok {
		return
	}

	if err := h.ledger.AnonymizeUser(ctx, req.UserID); err != nil {
		h.logger.ErrorContext(ctx, "audit anonymization failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func filtersFromQuery(r *http.Request) (audit.Filters, error) {
	q := r.URL.Query()
	filters := audit.Filters{
		UserID:       q.Get("user_id"),
		ResourceID:   q.Get("resource_id"),
		ResourceType: q.Get("resource_type"),
		Context:      q.Get("context"),
		Event:        q.Get("event"),
	}
	if raw := q.Get("from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filters{}, dErrors.New(dErrors.CodeInvalidInput, "from must be RFC 3339")
		}
		filters.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return audit.Filters{}, dErrors.New(dErrors.CodeInvalidInput, "to must be RFC 3339")
		}
		filters.To = to
	}
	return filters, nil
}
