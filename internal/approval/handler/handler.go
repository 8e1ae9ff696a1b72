// Package handler exposes the approval chain configuration for UI flows
// that render the sign-off sequence ahead of time.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "meridian/pkg/domain-errors"
	"meridian/pkg/platform/httputil"
	"meridian/pkg/requestcontext"

	"meridian/internal/approval"
	"meridian/internal/rbac"
)

type Handler struct {
	resolver *approval.Resolver
}

func New(resolver *approval.Resolver) *Handler {
	return &Handler{resolver: resolver}
}

// Register mounts approval-chain endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/approval-chains/{resourceType}", h.HandleChainFor)
}

// HandleChainFor returns the chain governing a resource type for the
// caller's institution, honoring tenant overrides.
func (h *Handler) HandleChainFor(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if requestcontext.Actor(ctx).IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	resourceType := rbac.Resource(chi.URLParam(r, "resourceType"))
	chain := h.resolver.ChainFor(resourceType, requestcontext.Institution(ctx))
	if chain == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "no approval chain configured for %s", resourceType))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, chain)
}
