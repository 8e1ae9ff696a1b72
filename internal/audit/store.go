package audit

import (
	"context"
	"time"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store is the persistence boundary for ledger events. Implementations must
// keep appends safe under concurrent writers and must make AnonymizeUser
// atomic with respect to readers: a concurrent All call sees either the
// fully original or the fully rewritten set, never a partial rewrite.
//
// There is deliberately no delete or update method: anonymization is the
// only mutation the ledger contract permits.
type Store interface {
	// Append persists one event. Events arrive with ID and timestamp set.
	Append(ctx context.Context, event Event) error

	// All returns every event, newest-first by timestamp.
	All(ctx context.Context) ([]Event, error)

	// AnonymizeUser rewrites the user reference on every event whose UserID
	// equals userID, stamping metadata.anonymized and anonymizedAt. Returns
	// the number of events rewritten.
	AnonymizeUser(ctx context.Context, userID, redacted string, now time.Time) (int, error)
}
