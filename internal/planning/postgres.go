package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists planning data in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initPlanningSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initPlanningSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id TEXT PRIMARY KEY,
			style TEXT NOT NULL DEFAULT '',
			budget DOUBLE PRECISION NOT NULL DEFAULT 0,
			guest_count INTEGER NOT NULL DEFAULT 0,
			wedding_date DATE NULL,
			venue TEXT NOT NULL DEFAULT '',
			celebrant TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL DEFAULT '',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS checklists (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL NOT NULL,
			user_id TEXT NOT NULL,
			checklist_id TEXT NULL REFERENCES checklists(id) ON DELETE SET NULL,
			title TEXT NOT NULL,
			status TEXT NOT NULL,
			scheduled_week INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_user_status ON tasks (user_id, status, seq);`,
		`CREATE TABLE IF NOT EXISTS timelines (
			user_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			label TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			PRIMARY KEY (user_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS budget_categories (
			user_id TEXT NOT NULL,
			category TEXT NOT NULL,
			position INTEGER NOT NULL DEFAULT 0,
			allocated DOUBLE PRECISION NOT NULL DEFAULT 0,
			spent DOUBLE PRECISION NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, category)
		);`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			id BIGSERIAL PRIMARY KEY,
			user_id TEXT NOT NULL,
			action_type TEXT NOT NULL,
			old_value JSONB NULL,
			new_value JSONB NULL,
			changed_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_user_created ON audit_logs (user_id, created_at DESC);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) GetPreferences(ctx context.Context, userID string) (Preferences, error) {
	var p Preferences
	err := s.pool.QueryRow(ctx,
		`SELECT style, budget, guest_count, wedding_date, venue, celebrant, role, updated_at
		   FROM user_preferences WHERE user_id=$1`,
		userID,
	).Scan(&p.Style, &p.Budget, &p.GuestCount, &p.WeddingDate, &p.Venue, &p.Celebrant, &p.Role, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Preferences{}, ErrNotFound
		}
		return Preferences{}, fmt.Errorf("get preferences: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) SavePreferences(ctx context.Context, userID string, p Preferences) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO user_preferences (user_id, style, budget, guest_count, wedding_date, venue, celebrant, role, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		 ON CONFLICT (user_id) DO UPDATE SET
			style=EXCLUDED.style,
			budget=EXCLUDED.budget,
			guest_count=EXCLUDED.guest_count,
			wedding_date=EXCLUDED.wedding_date,
			venue=EXCLUDED.venue,
			celebrant=EXCLUDED.celebrant,
			role=EXCLUDED.role,
			updated_at=now()`,
		userID, p.Style, p.Budget, p.GuestCount, p.WeddingDate, p.Venue, p.Celebrant, p.Role,
	)
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateChecklist(ctx context.Context, c Checklist) (Checklist, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO checklists (id, user_id, title, created_at) VALUES ($1,$2,$3,$4)`,
		c.ID, c.UserID, c.Title, c.CreatedAt,
	)
	if err != nil {
		return Checklist{}, fmt.Errorf("create checklist: %w", err)
	}
	return c, nil
}

func (s *PostgresStore) AddTasks(ctx context.Context, tasks []Task) ([]Task, error) {
	if len(tasks) == 0 {
		return []Task{}, nil
	}
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
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
		var checklistID *string
		if task.ChecklistID != "" {
			checklistID = &task.ChecklistID
		}
		err := tx.QueryRow(ctx,
			`INSERT INTO tasks (id, user_id, checklist_id, title, status, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$6) RETURNING seq`,
			task.ID, task.UserID, checklistID, task.Title, string(task.Status), now,
		).Scan(&task.Seq)
		if err != nil {
			return nil, fmt.Errorf("insert task: %w", err)
		}
		out = append(out, task)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) CompleteTasks(ctx context.Context, userID, fragment string) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET status=$3, updated_at=now()
		  WHERE user_id=$1 AND status=$4 AND position(lower($2) in lower(title)) > 0`,
		userID, fragment, string(TaskCompleted), string(TaskPending),
	)
	if err != nil {
		return 0, fmt.Errorf("complete tasks: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, userID string, status TaskStatus) ([]Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, COALESCE(checklist_id, ''), title, status, scheduled_week, created_at, updated_at, seq
		   FROM tasks WHERE user_id=$1 AND ($2 = '' OR status=$2)
		  ORDER BY seq ASC`,
		userID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := []Task{}
	for rows.Next() {
		var (
			t      Task
			status string
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.ChecklistID, &t.Title, &status, &t.ScheduledWeek, &t.CreatedAt, &t.UpdatedAt, &t.Seq); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}
		t.Status = TaskStatus(status)
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) SetScheduledWeek(ctx context.Context, taskID string, week int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tasks SET scheduled_week=$2, updated_at=now() WHERE id=$1`,
		taskID, week,
	)
	if err != nil {
		return fmt.Errorf("schedule task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ReplaceTimeline(ctx context.Context, userID string, blocks []TimelineBlock) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM timelines WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear timeline: %w", err)
	}
	for i, b := range blocks {
		if _, err := tx.Exec(ctx,
			`INSERT INTO timelines (user_id, position, label, start_time, end_time) VALUES ($1,$2,$3,$4,$5)`,
			userID, i, b.Label, b.Start, b.End,
		); err != nil {
			return fmt.Errorf("insert timeline block: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTimeline(ctx context.Context, userID string) ([]TimelineBlock, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT label, start_time, end_time FROM timelines WHERE user_id=$1 ORDER BY position ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	defer rows.Close()

	out := []TimelineBlock{}
	for rows.Next() {
		var b TimelineBlock
		if err := rows.Scan(&b.Label, &b.Start, &b.End); err != nil {
			return nil, fmt.Errorf("scan timeline row: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timeline rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) ReplaceBudget(ctx context.Context, userID string, categories []BudgetCategory) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM budget_categories WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("clear budget: %w", err)
	}
	for i, c := range categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO budget_categories (user_id, category, position, allocated, spent, updated_at)
			 VALUES ($1,$2,$3,$4,$5,now())`,
			userID, c.Category, i, c.Allocated, c.Spent,
		); err != nil {
			return fmt.Errorf("insert budget category: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateCategoryAllocation(ctx context.Context, userID, category string, amount float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE budget_categories SET allocated=$3, updated_at=now() WHERE user_id=$1 AND category=$2`,
		userID, category, amount,
	)
	if err != nil {
		return fmt.Errorf("update budget category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListBudget(ctx context.Context, userID string) ([]BudgetCategory, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, allocated, spent, updated_at FROM budget_categories
		  WHERE user_id=$1 ORDER BY position ASC, category ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list budget: %w", err)
	}
	defer rows.Close()

	out := []BudgetCategory{}
	for rows.Next() {
		var c BudgetCategory
		if err := rows.Scan(&c.Category, &c.Allocated, &c.Spent, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan budget row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) AppendAudit(ctx context.Context, e AuditEvent) error {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_logs (user_id, action_type, old_value, new_value, changed_by, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.UserID, e.ActionType, e.OldValue, e.NewValue, e.ChangedBy, e.At,
	)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAudit(ctx context.Context, userID string, limit int) ([]AuditEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT user_id, action_type, old_value, new_value, changed_by, created_at
		   FROM audit_logs WHERE user_id=$1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	out := make([]AuditEvent, 0, limit)
	for rows.Next() {
		var e AuditEvent
		if err := rows.Scan(&e.UserID, &e.ActionType, &e.OldValue, &e.NewValue, &e.ChangedBy, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
