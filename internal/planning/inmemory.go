package planning

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps planning data in process memory for local/dev use.
type InMemoryStore struct {
	mu         sync.RWMutex
	prefs      map[string]Preferences
	checklists map[string]Checklist
	tasks      map[string]*Task
	timelines  map[string][]TimelineBlock
	budgets    map[string][]BudgetCategory
	audit      map[string][]AuditEvent
	seq        int64
	now        func() time.Time
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		prefs:      make(map[string]Preferences),
		checklists: make(map[string]Checklist),
		tasks:      make(map[string]*Task),
		timelines:  make(map[string][]TimelineBlock),
		budgets:    make(map[string][]BudgetCategory),
		audit:      make(map[string][]AuditEvent),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryStore) GetPreferences(_ context.Context, userID string) (Preferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prefs, ok := s.prefs[userID]
	if !ok {
		return Preferences{}, ErrNotFound
	}
	return clonePreferences(prefs), nil
}

func (s *InMemoryStore) SavePreferences(_ context.Context, userID string, prefs Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prefs.UpdatedAt = s.now()
	s.prefs[userID] = clonePreferences(prefs)
	return nil
}

func (s *InMemoryStore) CreateChecklist(_ context.Context, checklist Checklist) (Checklist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if checklist.ID == "" {
		checklist.ID = uuid.NewString()
	}
	if checklist.CreatedAt.IsZero() {
		checklist.CreatedAt = s.now()
	}
	s.checklists[checklist.ID] = checklist
	return checklist, nil
}

func (s *InMemoryStore) AddTasks(_ context.Context, tasks []Task) ([]Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	out := make([]Task, 0, len(tasks))
	for _, task := range tasks {
		if task.ID == "" {
			task.ID = uuid.NewString()
		}
		if task.Status == "" {
			task.Status = TaskPending
		}
		task.CreatedAt = now
		task.UpdatedAt = now
		s.seq++
		task.Seq = s.seq
		stored := task
		s.tasks[task.ID] = &stored
		out = append(out, task)
	}
	return out, nil
}

func (s *InMemoryStore) CompleteTasks(_ context.Context, userID, fragment string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	needle := strings.ToLower(fragment)
	changed := 0
	for _, task := range s.tasks {
		if task.UserID != userID || task.Status != TaskPending {
			continue
		}
		if !strings.Contains(strings.ToLower(task.Title), needle) {
			continue
		}
		task.Status = TaskCompleted
		task.UpdatedAt = s.now()
		changed++
	}
	return changed, nil
}

func (s *InMemoryStore) ListTasks(_ context.Context, userID string, status TaskStatus) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []Task{}
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if status != "" && task.Status != status {
			continue
		}
		out = append(out, *task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *InMemoryStore) SetScheduledWeek(_ context.Context, taskID string, week int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return ErrNotFound
	}
	task.ScheduledWeek = week
	task.UpdatedAt = s.now()
	return nil
}

func (s *InMemoryStore) ReplaceTimeline(_ context.Context, userID string, blocks []TimelineBlock) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timelines[userID] = append([]TimelineBlock(nil), blocks...)
	return nil
}

func (s *InMemoryStore) ListTimeline(_ context.Context, userID string) ([]TimelineBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]TimelineBlock{}, s.timelines[userID]...), nil
}

func (s *InMemoryStore) ReplaceBudget(_ context.Context, userID string, categories []BudgetCategory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	rows := make([]BudgetCategory, 0, len(categories))
	for _, c := range categories {
		c.UpdatedAt = now
		rows = append(rows, c)
	}
	s.budgets[userID] = rows
	return nil
}

func (s *InMemoryStore) UpdateCategoryAllocation(_ context.Context, userID, category string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.budgets[userID]
	for i := range rows {
		if rows[i].Category == category {
			rows[i].Allocated = amount
			rows[i].UpdatedAt = s.now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryStore) ListBudget(_ context.Context, userID string) ([]BudgetCategory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]BudgetCategory{}, s.budgets[userID]...), nil
}

func (s *InMemoryStore) AppendAudit(_ context.Context, event AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.At.IsZero() {
		event.At = s.now()
	}
	s.audit[event.UserID] = append(s.audit[event.UserID], event)
	return nil
}

func (s *InMemoryStore) ListAudit(_ context.Context, userID string, limit int) ([]AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.audit[userID]
	if limit <= 0 || limit > len(events) {
		limit = len(events)
	}
	out := make([]AuditEvent, 0, limit)
	for i := len(events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, events[i])
	}
	return out, nil
}

func (s *InMemoryStore) Close() error { return nil }

func clonePreferences(p Preferences) Preferences {
	if p.WeddingDate != nil {
		d := *p.WeddingDate
		p.WeddingDate = &d
	}
	return p
}
