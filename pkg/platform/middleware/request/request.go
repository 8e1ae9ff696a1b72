// Package request provides request-ID middleware. Every request gets an ID,
// either the caller's X-Request-ID or a fresh UUID, stored in the context and
// echoed back in the response header.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"meridian/pkg/requestcontext"
)

const headerRequestID = "X-Request-ID"

// Middleware assigns the request ID. Apply it first in the chain so every
// later middleware and handler can log with it.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(headerRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
