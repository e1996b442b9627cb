package planning

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("planning record not found")
	ErrUnknownField      = errors.New("field cannot be updated")
	ErrInvalidValue      = errors.New("invalid field value")
	ErrWeddingDateNotSet = errors.New("wedding date not set")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// Preferences is the couple's planning profile.
type Preferences struct {
	Style       string     `json:"style"`
	Budget      float64    `json:"budget"`
	GuestCount  int        `json:"guest_count"`
	WeddingDate *time.Time `json:"wedding_date,omitempty"`
	Venue       string     `json:"venue"`
	Celebrant   string     `json:"celebrant"`
	Role        string     `json:"role,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskCompleted TaskStatus = "completed"
)

type Checklist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	ChecklistID   string     `json:"checklist_id,omitempty"`
	Title         string     `json:"title"`
	Status        TaskStatus `json:"status"`
	ScheduledWeek int        `json:"scheduled_week,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Seq           int64      `json:"-"`
}

// TimelineBlock is one slot of the wedding-day timeline; Start and End are HH:MM.
type TimelineBlock struct {
	Label string `json:"label"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type BudgetCategory struct {
	Category  string    `json:"category"`
	Allocated float64   `json:"allocated"`
	Spent     float64   `json:"spent"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuditEvent struct {
	UserID     string         `json:"user_id"`
	ActionType string         `json:"action_type"`
	OldValue   map[string]any `json:"old_value,omitempty"`
	NewValue   map[string]any `json:"new_value,omitempty"`
	ChangedBy  string         `json:"changed_by"`
	At         time.Time      `json:"created_at"`
}

type Store interface {
	GetPreferences(ctx context.Context, userID string) (Preferences, error)
	SavePreferences(ctx context.Context, userID string, prefs Preferences) error

	CreateChecklist(ctx context.Context, checklist Checklist) (Checklist, error)
	AddTasks(ctx context.Context, tasks []Task) ([]Task, error)
	// CompleteTasks marks every pending task whose title contains fragment,
	// case-insensitively, and returns how many changed.
	CompleteTasks(ctx context.Context, userID, fragment string) (int, error)
	// ListTasks returns tasks in creation order. An empty status lists all.
	ListTasks(ctx context.Context, userID string, status TaskStatus) ([]Task, error)
	SetScheduledWeek(ctx context.Context, taskID string, week int) error

	ReplaceTimeline(ctx context.Context, userID string, blocks []TimelineBlock) error
	ListTimeline(ctx context.Context, userID string) ([]TimelineBlock, error)

	ReplaceBudget(ctx context.Context, userID string, categories []BudgetCategory) error
	UpdateCategoryAllocation(ctx context.Context, userID, category string, amount float64) error
	ListBudget(ctx context.Context, userID string) ([]BudgetCategory, error)

	AppendAudit(ctx context.Context, event AuditEvent) error
	ListAudit(ctx context.Context, userID string, limit int) ([]AuditEvent, error)

	Close() error
}
