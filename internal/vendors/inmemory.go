package vendors

import (
	"context"
	"slices"
	"sort"
	"sync"
)

type InMemoryStore struct {
	mu         sync.RWMutex
	vendors    map[string]Vendor
	shortlists map[string][]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		vendors:    make(map[string]Vendor),
		shortlists: make(map[string][]string),
	}
}

func (s *InMemoryStore) Recommend(_ context.Context, q Query) ([]Vendor, error) {
	q = normalizeQuery(q)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Vendor{}
	for _, v := range s.vendors {
		if v.Category != q.Category || v.City != q.City {
			continue
		}
		if q.MaxBudget > 0 && v.RecommendedPrice > q.MaxBudget {
			continue
		}
		if !containsAll(v.StyleTags, q.StyleTags) {
			continue
		}
		out = append(out, cloneVendor(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RecommendedPrice != out[j].RecommendedPrice {
			return out[i].RecommendedPrice < out[j].RecommendedPrice
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *InMemoryStore) AddVendor(_ context.Context, v Vendor) (Vendor, error) {
	v, err := normalizeVendor(v)
	if err != nil {
		return Vendor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vendors[v.ID] = cloneVendor(v)
	return v, nil
}

func (s *InMemoryStore) GetVendor(_ context.Context, id string) (Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vendors[id]
	if !ok {
		return Vendor{}, ErrNotFound
	}
	return cloneVendor(v), nil
}

func (s *InMemoryStore) AddToShortlist(_ context.Context, userID, vendorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vendors[vendorID]; !ok {
		return ErrNotFound
	}
	if slices.Contains(s.shortlists[userID], vendorID) {
		return nil
	}
	s.shortlists[userID] = append(s.shortlists[userID], vendorID)
	return nil
}

func (s *InMemoryStore) Shortlist(_ context.Context, userID string) ([]Vendor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Vendor, 0, len(s.shortlists[userID]))
	for _, id := range s.shortlists[userID] {
		if v, ok := s.vendors[id]; ok {
			out = append(out, cloneVendor(v))
		}
	}
	return out, nil
}

func (s *InMemoryStore) RemoveFromShortlist(_ context.Context, userID, vendorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.shortlists[userID]
	if i := slices.Index(ids, vendorID); i >= 0 {
		s.shortlists[userID] = slices.Delete(ids, i, i+1)
	}
	return nil
}

func (s *InMemoryStore) Close() error { return nil }

func containsAll(have, want []string) bool {
	for _, w := range want {
		if !slices.Contains(have, w) {
			return false
		}
	}
	return true
}

func cloneVendor(v Vendor) Vendor {
	v.StyleTags = slices.Clone(v.StyleTags)
	return v
}
