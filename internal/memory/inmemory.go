package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore is a simple in-process turn log for local/dev use.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
	owners  map[string]string
	seq     int64
	last    time.Time
	now     func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		records: make(map[string][]Record),
		owners:  make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryStore) InsertTurn(_ context.Context, turn Turn) (Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = s.now()
	}
	// Keep created_at non-decreasing even if the wall clock steps back.
	if turn.CreatedAt.Before(s.last) {
		turn.CreatedAt = s.last
	}
	s.last = turn.CreatedAt
	s.seq++
	turn.Seq = s.seq

	content := turn.Content
	s.records[turn.UserID] = append(s.records[turn.UserID], Record{
		ID:        turn.ID,
		UserID:    turn.UserID,
		Role:      turn.Role,
		Content:   &content,
		CreatedAt: turn.CreatedAt,
		Seq:       turn.Seq,
	})
	s.owners[turn.ID] = turn.UserID
	return turn, nil
}

func (s *InMemoryStore) OldestTurns(_ context.Context, userID string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.records[userID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	out := make([]Record, limit)
	copy(out, arr[:limit])
	return out, nil
}

func (s *InMemoryStore) TurnIDsNewestFirst(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.records[userID]
	ids := make([]string, 0, len(arr))
	for i := len(arr) - 1; i >= 0; i-- {
		ids = append(ids, arr[i].ID)
	}
	return ids, nil
}

func (s *InMemoryStore) DeleteTurns(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doomed := make(map[string]map[string]struct{})
	for _, id := range ids {
		userID, ok := s.owners[id]
		if !ok {
			continue
		}
		if doomed[userID] == nil {
			doomed[userID] = make(map[string]struct{})
		}
		doomed[userID][id] = struct{}{}
		delete(s.owners, id)
	}
	for userID, set := range doomed {
		arr := s.records[userID]
		kept := arr[:0]
		for _, r := range arr {
			if _, drop := set[r.ID]; !drop {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(s.records, userID)
			continue
		}
		s.records[userID] = kept
	}
	return nil
}

func (s *InMemoryStore) DeleteUserTurns(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records[userID] {
		delete(s.owners, r.ID)
	}
	delete(s.records, userID)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
