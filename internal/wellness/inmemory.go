package wellness

import (
	"context"
	"math/rand/v2"
	"sync"
)

// InMemoryStore keeps wellness content in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	items []Item
	pick  func(n int) int
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{pick: rand.IntN}
}

func (s *InMemoryStore) Pick(_ context.Context, kind Kind) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]int, 0, len(s.items))
	for i, item := range s.items {
		if item.Type == kind {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	item := s.items[matches[s.pick(len(matches))]]
	return &item, nil
}

func (s *InMemoryStore) Add(_ context.Context, item Item) (Item, error) {
	item, err := normalizeItem(item)
	if err != nil {
		return Item{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = item
			return item, nil
		}
	}
	s.items = append(s.items, item)
	return item, nil
}

func (s *InMemoryStore) List(_ context.Context, kind Kind) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Item, 0, len(s.items))
	for _, item := range s.items {
		if kind == "" || item.Type == kind {
			out = append(out, item)
		}
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }
