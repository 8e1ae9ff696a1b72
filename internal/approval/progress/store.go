// Package progress persists which approval-chain orders have been completed
// for a resource. The resolver itself is stateless, so the caller records
// sign-offs here and feeds them back into Chain.IsComplete / NextStep.
package progress

import "context"

// Store tracks completed step orders per resource instance. Implementations
// must be safe for concurrent recorders on different resources; recording
// the same order twice is idempotent.
type Store interface {
	Record(ctx context.Context, resourceType, resourceID string, order int) error
	Completed(ctx context.Context, resourceType, resourceID string) ([]int, error)
}
