package planning

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const DefaultChecklistTitle = "Wedding Checklist"

// UpdatableFields are the preference fields an external portal may change.
var UpdatableFields = []string{"budget", "venue", "style", "wedding_date", "guest_count", "celebrant"}

// Service applies planning rules on top of a Store and records audit events
// for user-visible changes.
type Service struct {
	store  Store
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Preferences returns the stored profile, or zero-valued preferences when the
// user has none yet.
func (s *Service) Preferences(ctx context.Context, userID string) (Preferences, error) {
	prefs, err := s.store.GetPreferences(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Preferences{}, nil
	}
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

func (s *Service) UpdateField(ctx context.Context, userID, field, value, changedBy string) (Preferences, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	if !isUpdatable(field) {
		return Preferences{}, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	old := fieldValue(prefs, field)

	value = strings.TrimSpace(value)
	switch field {
	case "budget":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 {
			return Preferences{}, fmt.Errorf("%w: budget %q", ErrInvalidValue, value)
		}
		prefs.Budget = v
	case "guest_count":
		v, err := strconv.Atoi(value)
		if err != nil || v < 0 {
			return Preferences{}, fmt.Errorf("%w: guest_count %q", ErrInvalidValue, value)
		}
		prefs.GuestCount = v
	case "wedding_date":
		if value == "" {
			prefs.WeddingDate = nil
			break
		}
		d, err := parseDate(value)
		if err != nil {
			return Preferences{}, fmt.Errorf("%w: wedding_date %q", ErrInvalidValue, value)
		}
		prefs.WeddingDate = &d
	case "venue":
		prefs.Venue = value
	case "style":
		prefs.Style = value
	case "celebrant":
		prefs.Celebrant = value
	}

	if err := s.store.SavePreferences(ctx, userID, prefs); err != nil {
		return Preferences{}, err
	}
	if changedBy == "" {
		changedBy = "portal"
	}
	s.audit(ctx, AuditEvent{
		UserID:     userID,
		ActionType: "portal_update_" + field,
		OldValue:   map[string]any{field: old},
		NewValue:   map[string]any{field: value},
		ChangedBy:  changedBy,
	})
	return s.Preferences(ctx, userID)
}

// SaveChecklist stores a checklist and one pending task per non-blank item.
func (s *Service) SaveChecklist(ctx context.Context, userID, title string, items []string) (int, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultChecklistTitle
	}
	checklist, err := s.store.CreateChecklist(ctx, Checklist{UserID: userID, Title: title})
	if err != nil {
		return 0, err
	}

	tasks := make([]Task, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		tasks = append(tasks, Task{UserID: userID, ChecklistID: checklist.ID, Title: item, Status: TaskPending})
	}
	saved, err := s.store.AddTasks(ctx, tasks)
	if err != nil {
		return 0, err
	}
	return len(saved), nil
}

func (s *Service) AddTask(ctx context.Context, userID, title string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, fmt.Errorf("%w: task title is required", ErrInvalidValue)
	}
	saved, err := s.store.AddTasks(ctx, []Task{{UserID: userID, Title: title, Status: TaskPending}})
	if err != nil {
		return Task{}, err
	}
	return saved[0], nil
}

// CompleteTask marks pending tasks whose title contains fragment as completed.
func (s *Service) CompleteTask(ctx context.Context, userID, fragment, changedBy string) (int, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return 0, fmt.Errorf("%w: task title is required", ErrInvalidValue)
	}
	n, err := s.store.CompleteTasks(ctx, userID, fragment)
	if err != nil {
		return 0, err
	}
	if changedBy == "" {
		changedBy = "chat"
	}
	s.audit(ctx, AuditEvent{
		UserID:     userID,
		ActionType: "task_completed",
		NewValue:   map[string]any{"task": fragment, "completed": n},
		ChangedBy:  changedBy,
	})
	return n, nil
}

func (s *Service) Tasks(ctx context.Context, userID string, status TaskStatus) ([]Task, error) {
	return s.store.ListTasks(ctx, userID, status)
}

// CreateDefaultTimeline replaces the user's timeline with the default for
// style, falling back to the stored preference when style is empty.
func (s *Service) CreateDefaultTimeline(ctx context.Context, userID, style string) (int, error) {
	if strings.TrimSpace(style) == "" {
		prefs, err := s.Preferences(ctx, userID)
		if err != nil {
			return 0, err
		}
		style = prefs.Style
	}
	blocks := DefaultTimeline(style)
	if err := s.store.ReplaceTimeline(ctx, userID, blocks); err != nil {
		return 0, err
	}
	return len(blocks), nil
}

func (s *Service) ReplaceTimeline(ctx context.Context, userID string, blocks []TimelineBlock) error {
	for i, b := range blocks {
		if strings.TrimSpace(b.Label) == "" {
			return fmt.Errorf("%w: block %d has no label", ErrInvalidValue, i)
		}
		if _, err := time.Parse("15:04", b.Start); err != nil {
			return fmt.Errorf("%w: block %d start %q", ErrInvalidValue, i, b.Start)
		}
		if _, err := time.Parse("15:04", b.End); err != nil {
			return fmt.Errorf("%w: block %d end %q", ErrInvalidValue, i, b.End)
		}
	}
	return s.store.ReplaceTimeline(ctx, userID, blocks)
}

func (s *Service) Timeline(ctx context.Context, userID string) ([]TimelineBlock, error) {
	return s.store.ListTimeline(ctx, userID)
}

// CreateBudgetBreakdown replaces the user's budget categories. A non-positive
// total falls back to the stored preference budget.
func (s *Service) CreateBudgetBreakdown(ctx context.Context, userID string, total float64) ([]BudgetCategory, error) {
	if total <= 0 {
		prefs, err := s.Preferences(ctx, userID)
		if err != nil {
			return nil, err
		}
		total = prefs.Budget
	}
	if total <= 0 {
		return nil, ErrInvalidAmount
	}
	if err := s.store.ReplaceBudget(ctx, userID, BudgetBreakdown(total)); err != nil {
		return nil, err
	}
	return s.store.ListBudget(ctx, userID)
}

func (s *Service) UpdateCategoryBudget(ctx context.Context, userID, category string, amount float64) error {
	if amount < 0 {
		return ErrInvalidAmount
	}
	return s.store.UpdateCategoryAllocation(ctx, userID, strings.TrimSpace(category), amount)
}

func (s *Service) Budget(ctx context.Context, userID string) ([]BudgetCategory, error) {
	return s.store.ListBudget(ctx, userID)
}

// GenerateWeeklySchedule spreads pending tasks over the weeks left before the
// wedding and returns how many were scheduled.
func (s *Service) GenerateWeeklySchedule(ctx context.Context, userID string, now time.Time, changedBy string) (int, error) {
	prefs, err := s.Preferences(ctx, userID)
	if err != nil {
		return 0, err
	}
	if prefs.WeddingDate == nil {
		return 0, ErrWeddingDateNotSet
	}

	pending, err := s.store.ListTasks(ctx, userID, TaskPending)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	weeks := AssignWeeks(len(pending), WeeksUntil(*prefs.WeddingDate, now))
	for i, task := range pending {
		if err := s.store.SetScheduledWeek(ctx, task.ID, weeks[i]); err != nil {
			return i, err
		}
	}

	if changedBy == "" {
		changedBy = "chat"
	}
	s.audit(ctx, AuditEvent{
		UserID:     userID,
		ActionType: "weekly_schedule_generated",
		NewValue:   map[string]any{"tasks_scheduled": len(pending)},
		ChangedBy:  changedBy,
	})
	return len(pending), nil
}

func (s *Service) AuditLog(ctx context.Context, userID string, limit int) ([]AuditEvent, error) {
	return s.store.ListAudit(ctx, userID, limit)
}

func (s *Service) audit(ctx context.Context, event AuditEvent) {
	event.At = s.now()
	if err := s.store.AppendAudit(ctx, event); err != nil {
		s.logger.Warn("audit append failed",
			zap.String("user_id", event.UserID),
			zap.String("action", event.ActionType),
			zap.Error(err),
		)
	}
}

func isUpdatable(field string) bool {
	return slices.Contains(UpdatableFields, field)
}

func fieldValue(p Preferences, field string) any {
	switch field {
	case "budget":
		return p.Budget
	case "guest_count":
		return p.GuestCount
	case "wedding_date":
		if p.WeddingDate == nil {
			return nil
		}
		return p.WeddingDate.Format(time.DateOnly)
	case "venue":
		return p.Venue
	case "style":
		return p.Style
	case "celebrant":
		return p.Celebrant
	}
	return nil
}

func parseDate(value string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, value); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return d.UTC(), nil
}
