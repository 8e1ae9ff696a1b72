// Package httptransport assembles the HTTP surface: middleware chain,
// module handlers, and operational endpoints.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "meridian/pkg/platform/middleware/auth"
	loggingmw "meridian/pkg/platform/middleware/logging"
	requestmw "meridian/pkg/platform/middleware/request"
	requesttimemw "meridian/pkg/platform/middleware/requesttime"
)

// Registrar is implemented by module handlers that mount their own routes.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter wires the middleware chain and mounts each module's routes.
// Everything except health and metrics sits behind authentication.
func NewRouter(validator authmw.JWTValidator, logger *slog.Logger, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()

	r.Use(requestmw.Middleware)
	r.Use(requesttimemw.Middleware)
	r.Use(loggingmw.Middleware(logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth(validator, logger))
		for _, h := range handlers {
			h.Register(r)
		}
	})

	return r
}
