// Package store provides journey persistence. The memory implementation
// serializes mutations per process; a SQL implementation would use
// SELECT ... FOR UPDATE inside Execute instead.
package store

import (
	"context"
	"sort"
	"sync"

	id "meridian/pkg/domain"
	"meridian/pkg/platform/sentinel"

	"meridian/internal/domain"
)

// InMemoryStore keeps journeys in a map guarded by a RWMutex. Execute holds
// the write lock across validate and mutate so no two transitions can race
// on the same journey.
type InMemoryStore struct {
	mu       sync.RWMutex
	journeys map[id.JourneyID]*domain.Journey
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{journeys: make(map[id.JourneyID]*domain.Journey)}
}

func (s *InMemoryStore) Create(ctx context.Context, journey *domain.Journey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.journeys[journey.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *journey
	s.journeys[journey.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(ctx context.Context, journeyID id.JourneyID) (*domain.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journey, ok := s.journeys[journeyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *journey
	return &clone, nil
}

// List returns every journey ordered by creation time, oldest first.
// Visibility filtering is the service's concern, not the store's.
func (s *InMemoryStore) List(ctx context.Context) ([]domain.Journey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	journeys := make([]domain.Journey, 0, len(s.journeys))
	for _, j := range s.journeys {
		journeys = append(journeys, *j)
	}
	sort.Slice(journeys, func(i, k int) bool {
		if journeys[i].CreatedAt.Equal(journeys[k].CreatedAt) {
			return journeys[i].ID.String() < journeys[k].ID.String()
		}
		return journeys[i].CreatedAt.Before(journeys[k].CreatedAt)
	})
	return journeys, nil
}

// Execute runs validate then mutate on the journey under the write lock,
// bumping the version on mutation. The returned journey is a copy.
func (s *InMemoryStore) Execute(
	ctx context.Context,
	journeyID id.JourneyID,
	validate func(*domain.Journey) error,
	mutate func(*domain.Journey),
) (*domain.Journey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	journey, ok := s.journeys[journeyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if err := validate(journey); err != nil {
		return nil, err
	}
	mutate(journey)
	journey.Version++

	clone := *journey
	return &clone, nil
}
