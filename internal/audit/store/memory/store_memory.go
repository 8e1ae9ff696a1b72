// Package memory provides the in-memory ledger store used by tests and
// single-instance deployments. It intentionally favors clarity over
// performance.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"meridian/internal/audit"
)

// InMemoryStore holds events in append order behind a single RWMutex. The
// write lock around AnonymizeUser is what gives readers the all-or-nothing
// view the ledger contract requires.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) All(_ context.Context) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]audit.Event, len(s.events))
	for i := range s.events {
		// Deep copies: readers must never alias ledger state.
		out[i] = cloneEvent(s.events[i])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (s *InMemoryStore) AnonymizeUser(_ context.Context, userID, redacted string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rewritten := 0
	for i := range s.events {
		if s.events[i].UserID != userID {
			continue
		}
		e := cloneEvent(s.events[i])
		e.UserID = redacted
		if e.Metadata == nil {
			e.Metadata = make(map[string]any, 2)
		}
		e.Metadata["anonymized"] = true
		e.Metadata["anonymizedAt"] = now.UTC().Format(time.RFC3339)
		s.events[i] = e
		rewritten++
	}
	return rewritten, nil
}

// Len reports the current event count. Test helper.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

func cloneEvent(e audit.Event) audit.Event {
	out := e
	if e.Metadata != nil {
		out.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}
