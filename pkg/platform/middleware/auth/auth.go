// Package auth provides the bearer-token middleware. It validates the JWT,
// resolves the caller's identity and (role, context) pair, and stores them in
// the request context for handlers and services.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "meridian/pkg/domain"
	"meridian/pkg/requestcontext"
)

// JWTClaims is the validated identity the middleware expects back from the
// token service.
type JWTClaims struct {
	UserID        string
	Role          string
	DomainContext string
	InstitutionID string
}

// JWTValidator validates a bearer token and returns its claims.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireAuth rejects requests without a valid bearer token and seeds the
// context with the caller's actor ID, role, domain context, and institution.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			userID, err := id.ParseUserID(claims.UserID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"request_id", requestID,
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithActor(ctx, userID)
			ctx = requestcontext.WithRole(ctx, claims.Role)
			ctx = requestcontext.WithDomainContext(ctx, claims.DomainContext)
			if claims.InstitutionID != "" {
				institution, err := id.ParseInstitutionID(claims.InstitutionID)
				if err == nil {
					ctx = requestcontext.WithInstitution(ctx, institution)
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
