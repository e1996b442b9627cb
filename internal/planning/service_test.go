package planning

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func newTestService() (*Service, *InMemoryStore) {
	store := NewInMemoryStore()
	return NewService(store, nil), store
}

func TestPreferencesDefaultToZeroValue(t *testing.T) {
	svc, _ := newTestService()
	prefs, err := svc.Preferences(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Preferences() error = %v", err)
	}
	if prefs.Style != "" || prefs.Budget != 0 || prefs.WeddingDate != nil {
		t.Fatalf("Preferences() = %+v, want zero value", prefs)
	}
}

func TestUpdateFieldParsesAndAudits(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.UpdateField(ctx, "u1", "budget", "30000", "portal"); err != nil {
		t.Fatalf("UpdateField(budget) error = %v", err)
	}
	if _, err := svc.UpdateField(ctx, "u1", "Guest_Count", " 120 ", ""); err != nil {
		t.Fatalf("UpdateField(guest_count) error = %v", err)
	}
	prefs, err := svc.UpdateField(ctx, "u1", "wedding_date", "2027-06-12", "")
	if err != nil {
		t.Fatalf("UpdateField(wedding_date) error = %v", err)
	}

	if prefs.Budget != 30000 || prefs.GuestCount != 120 {
		t.Fatalf("prefs = %+v, want budget 30000 and 120 guests", prefs)
	}
	if prefs.WeddingDate == nil || prefs.WeddingDate.Format(time.DateOnly) != "2027-06-12" {
		t.Fatalf("wedding date = %v, want 2027-06-12", prefs.WeddingDate)
	}

	events, err := svc.AuditLog(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("AuditLog() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("audit events = %d, want 3", len(events))
	}
	latest := events[0]
	if latest.ActionType != "portal_update_wedding_date" || latest.ChangedBy != "portal" {
		t.Fatalf("latest audit = %+v", latest)
	}
	if diff := cmp.Diff(map[string]any{"wedding_date": nil}, latest.OldValue); diff != "" {
		t.Fatalf("old value mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateFieldRejectsUnknownAndInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.UpdateField(ctx, "u1", "role", "planner", ""); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("UpdateField(role) error = %v, want ErrUnknownField", err)
	}
	if _, err := svc.UpdateField(ctx, "u1", "budget", "lots", ""); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("UpdateField(budget) error = %v, want ErrInvalidValue", err)
	}
	if _, err := svc.UpdateField(ctx, "u1", "wedding_date", "next june", ""); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("UpdateField(wedding_date) error = %v, want ErrInvalidValue", err)
	}
}

func TestSaveChecklistAndCompleteTask(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	n, err := svc.SaveChecklist(ctx, "u1", "", []string{"Book venue", "  ", "Book photographer", "Send invitations"})
	if err != nil {
		t.Fatalf("SaveChecklist() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("SaveChecklist() = %d, want 3", n)
	}

	done, err := svc.CompleteTask(ctx, "u1", "BOOK", "")
	if err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}
	if done != 2 {
		t.Fatalf("CompleteTask() = %d, want 2", done)
	}

	pending, err := svc.Tasks(ctx, "u1", TaskPending)
	if err != nil {
		t.Fatalf("Tasks() error = %v", err)
	}
	if len(pending) != 1 || pending[0].Title != "Send invitations" {
		t.Fatalf("pending = %+v, want only invitations", pending)
	}

	other, _ := svc.Tasks(ctx, "u2", "")
	if len(other) != 0 {
		t.Fatalf("other user tasks = %d, want 0", len(other))
	}

	if _, err := svc.AddTask(ctx, "u1", " "); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("AddTask(blank) error = %v, want ErrInvalidValue", err)
	}
}

func TestCreateDefaultTimelineUsesStoredStyle(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.UpdateField(ctx, "u1", "style", "formal", ""); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	n, err := svc.CreateDefaultTimeline(ctx, "u1", "")
	if err != nil {
		t.Fatalf("CreateDefaultTimeline() error = %v", err)
	}
	if n != 9 {
		t.Fatalf("CreateDefaultTimeline() = %d, want 9", n)
	}

	// Replacing keeps only the new blocks.
	if _, err := svc.CreateDefaultTimeline(ctx, "u1", "casual"); err != nil {
		t.Fatalf("CreateDefaultTimeline(casual) error = %v", err)
	}
	blocks, _ := svc.Timeline(ctx, "u1")
	if len(blocks) != 7 {
		t.Fatalf("timeline len = %d, want 7", len(blocks))
	}

	err = svc.ReplaceTimeline(ctx, "u1", []TimelineBlock{{Label: "Ceremony", Start: "4pm", End: "16:30"}})
	if !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("ReplaceTimeline() error = %v, want ErrInvalidValue", err)
	}
}

func TestBudgetBreakdownAndCategoryUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	if _, err := svc.CreateBudgetBreakdown(ctx, "u1", 0); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("CreateBudgetBreakdown(0) error = %v, want ErrInvalidAmount", err)
	}
	if _, err := svc.UpdateField(ctx, "u1", "budget", "10000", ""); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	rows, err := svc.CreateBudgetBreakdown(ctx, "u1", 0)
	if err != nil {
		t.Fatalf("CreateBudgetBreakdown() error = %v", err)
	}
	if len(rows) != 5 || rows[0].Allocated != 4000 {
		t.Fatalf("rows = %+v, want venue 4000", rows)
	}

	if err := svc.UpdateCategoryBudget(ctx, "u1", "Decor", 1500); err != nil {
		t.Fatalf("UpdateCategoryBudget() error = %v", err)
	}
	if err := svc.UpdateCategoryBudget(ctx, "u1", "Fireworks", 10); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateCategoryBudget(missing) error = %v, want ErrNotFound", err)
	}
	rows, _ = svc.Budget(ctx, "u1")
	if rows[3].Category != "Decor" || rows[3].Allocated != 1500 {
		t.Fatalf("decor row = %+v, want 1500", rows[3])
	}
}

func TestGenerateWeeklySchedule(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	if _, err := svc.GenerateWeeklySchedule(ctx, "u1", now, ""); !errors.Is(err, ErrWeddingDateNotSet) {
		t.Fatalf("GenerateWeeklySchedule() error = %v, want ErrWeddingDateNotSet", err)
	}

	if _, err := svc.UpdateField(ctx, "u1", "wedding_date", "2026-03-23", ""); err != nil {
		t.Fatalf("UpdateField() error = %v", err)
	}
	n, err := svc.GenerateWeeklySchedule(ctx, "u1", now, "")
	if err != nil {
		t.Fatalf("GenerateWeeklySchedule() error = %v", err)
	}
	if n != 0 {
		t.Fatalf("GenerateWeeklySchedule() with no tasks = %d, want 0", n)
	}

	if _, err := svc.SaveChecklist(ctx, "u1", "", []string{"a", "b", "c", "d", "e", "f", "g"}); err != nil {
		t.Fatalf("SaveChecklist() error = %v", err)
	}
	if _, err := svc.CompleteTask(ctx, "u1", "g", ""); err != nil {
		t.Fatalf("CompleteTask() error = %v", err)
	}

	n, err = svc.GenerateWeeklySchedule(ctx, "u1", now, "")
	if err != nil {
		t.Fatalf("GenerateWeeklySchedule() error = %v", err)
	}
	if n != 6 {
		t.Fatalf("GenerateWeeklySchedule() = %d, want 6", n)
	}

	tasks, _ := svc.Tasks(ctx, "u1", TaskPending)
	got := make([]int, 0, len(tasks))
	for _, task := range tasks {
		got = append(got, task.ScheduledWeek)
	}
	if diff := cmp.Diff([]int{1, 1, 2, 2, 3, 3}, got); diff != "" {
		t.Fatalf("scheduled weeks mismatch (-want +got):\n%s", diff)
	}

	events, _ := svc.AuditLog(ctx, "u1", 1)
	if len(events) != 1 || events[0].ActionType != "weekly_schedule_generated" {
		t.Fatalf("latest audit = %+v, want weekly_schedule_generated", events)
	}
}
