package progress

import (
	"context"
	"sort"
	"sync"
)

type progressKey struct {
	resourceType string
	resourceID   string
}

// InMemoryStore keeps approval progress in process memory. Suitable for
// tests and single-instance deployments.
type InMemoryStore struct {
	mu     sync.RWMutex
	orders map[progressKey]map[int]struct{}
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{orders: make(map[progressKey]map[int]struct{})}
}

func (s *InMemoryStore) Record(_ context.Context, resourceType, resourceID string, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := progressKey{resourceType, resourceID}
	set, ok := s.orders[key]
	if !ok {
		set = make(map[int]struct{})
		s.orders[key] = set
	}
	set[order] = struct{}{}
	return nil
}

func (s *InMemoryStore) Completed(_ context.Context, resourceType, resourceID string) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := s.orders[progressKey{resourceType, resourceID}]
	orders := make([]int, 0, len(set))
	for o := range set {
		orders = append(orders, o)
	}
	sort.Ints(orders)
	return orders, nil
}
