package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meridian/internal/audit"
)

func TestAppendIsSafeUnderConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	const writers = 16
	const perWriter = 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_ = store.Append(ctx, audit.Event{
					ID:        fmt.Sprintf("%d-%d", w, i),
					Timestamp: time.Now(),
					Event:     "journey.updated",
				})
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, writers*perWriter, store.Len(), "concurrent appends must not lose events")
}

// TestAnonymizeIsAtomicForReaders hammers All while AnonymizeUser runs and
// asserts no snapshot ever contains a partial rewrite.
func TestAnonymizeIsAtomicForReaders(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	const n = 500
	for i := 0; i < n; i++ {
		require.NoError(t, store.Append(ctx, audit.Event{
			ID:        fmt.Sprintf("e%d", i),
			Timestamp: time.Now(),
			Event:     "journey.updated",
			UserID:    "target",
		}))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = store.AnonymizeUser(ctx, "target", "redacted-x", time.Now())
	}()

	for {
		events, err := store.All(ctx)
		require.NoError(t, err)

		rewritten := 0
		for _, e := range events {
			if e.UserID != "target" {
				rewritten++
			}
		}
		assert.Contains(t, []int{0, n}, rewritten, "readers must never observe a partial rewrite")

		select {
		case <-done:
			events, err := store.All(ctx)
			require.NoError(t, err)
			for _, e := range events {
				assert.Equal(t, "redacted-x", e.UserID)
			}
			return
		default:
		}
	}
}

func TestReadersCannotMutateLedgerState(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.Event{
		ID:       "e1",
		Event:    "journey.updated",
		Metadata: map[string]any{"note": "original"},
	}))

	snapshot, err := store.All(ctx)
	require.NoError(t, err)
	snapshot[0].Metadata["note"] = "tampered"
	snapshot[0].UserID = "tampered"

	fresh, err := store.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, "original", fresh[0].Metadata["note"])
	assert.Empty(t, fresh[0].UserID)
}
