// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions live here so services can read
// values set by middleware without importing net/http. Tests inject values
// directly:
//
//	ctx = requestcontext.WithActor(ctx, userID)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "meridian/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	actorKey         struct{}
	roleKey          struct{}
	domainContextKey struct{}
	institutionKey   struct{}
	requestIDKey     struct{}
	requestTimeKey   struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyActor         = actorKey{}
	ContextKeyRole          = roleKey{}
	ContextKeyDomainContext = domainContextKey{}
	ContextKeyInstitution   = institutionKey{}
	ContextKeyRequestID     = requestIDKey{}
	ContextKeyRequestTime   = requestTimeKey{}
)

// Actor retrieves the authenticated user ID from the context.
// Returns the zero value (nil UUID) if not set.
func Actor(ctx context.Context) id.UserID {
	if userID, ok := ctx.Value(ContextKeyActor).(id.UserID); ok {
		return userID
	}
	return id.UserID{}
}

// WithActor injects the authenticated user ID into the context.
func WithActor(ctx context.Context, userID id.UserID) context.Context {
	return context.WithValue(ctx, ContextKeyActor, userID)
}

// Role retrieves the caller's role name from the context.
func Role(ctx context.Context) string {
	if role, ok := ctx.Value(ContextKeyRole).(string); ok {
		return role
	}
	return ""
}

// WithRole injects the caller's role name into the context.
func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, ContextKeyRole, role)
}

// DomainContext retrieves the caller's domain context (b2c, b2b, admin).
func DomainContext(ctx context.Context) string {
	if dc, ok := ctx.Value(ContextKeyDomainContext).(string); ok {
		return dc
	}
	return ""
}

// WithDomainContext injects the caller's domain context.
func WithDomainContext(ctx context.Context, domainContext string) context.Context {
	return context.WithValue(ctx, ContextKeyDomainContext, domainContext)
}

// Institution retrieves the caller's institution (tenant) ID, if any.
func Institution(ctx context.Context) id.InstitutionID {
	if inst, ok := ctx.Value(ContextKeyInstitution).(id.InstitutionID); ok {
		return inst
	}
	return id.InstitutionID{}
}

// WithInstitution injects the caller's institution ID.
func WithInstitution(ctx context.Context, inst id.InstitutionID) context.Context {
	return context.WithValue(ctx, ContextKeyInstitution, inst)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need consistent time within a batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
