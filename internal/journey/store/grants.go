package store

import (
	"context"
	"sync"

	id "meridian/pkg/domain"

	"meridian/internal/domain"
)

// InMemoryGrantStore keeps the principal's advisor delegation records.
// A missing record means no access; callers must not substitute a default.
type InMemoryGrantStore struct {
	mu     sync.RWMutex
	grants map[id.UserID]domain.AdvisorGrant
}

func NewInMemoryGrantStore() *InMemoryGrantStore {
	return &InMemoryGrantStore{grants: make(map[id.UserID]domain.AdvisorGrant)}
}

// Upsert replaces the grant for the advisor. Revocation is modeled as a
// grant with GrantScopeNone, not a delete, so the record stays auditable.
func (s *InMemoryGrantStore) Upsert(ctx context.Context, grant domain.AdvisorGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grants[grant.AdvisorID] = grant
	return nil
}

// GrantFor returns the advisor's grant, or nil when none is on record.
func (s *InMemoryGrantStore) GrantFor(ctx context.Context, advisorID id.UserID) (*domain.AdvisorGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grant, ok := s.grants[advisorID]
	if !ok {
		return nil, nil
	}
	clone := grant
	clone.JourneyIDs = append([]id.JourneyID(nil), grant.JourneyIDs...)
	return &clone, nil
}
