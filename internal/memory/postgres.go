package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the conversation buffer in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS conversation_buffer (
			id TEXT PRIMARY KEY,
			seq BIGSERIAL NOT NULL,
			user_id TEXT NOT NULL,
			role TEXT NOT NULL,
			message TEXT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_buffer_user_created ON conversation_buffer (user_id, created_at, seq);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) InsertTurn(ctx context.Context, turn Turn) (Turn, error) {
	if turn.ID == "" {
		turn.ID = uuid.NewString()
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}

	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversation_buffer (id, user_id, role, message, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING seq`,
		turn.ID,
		turn.UserID,
		turn.Role,
		turn.Content,
		turn.CreatedAt,
	).Scan(&turn.Seq)
	if err != nil {
		return Turn{}, fmt.Errorf("insert turn: %w", err)
	}
	return turn, nil
}

func (s *PostgresStore) OldestTurns(ctx context.Context, userID string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultMaxTurns
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, role, message, created_at, seq
		 FROM conversation_buffer WHERE user_id=$1
		 ORDER BY created_at ASC, seq ASC LIMIT $2`,
		userID,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	items := make([]Record, 0, limit)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.UserID, &r.Role, &r.Content, &r.CreatedAt, &r.Seq); err != nil {
			return nil, fmt.Errorf("scan conversation row: %w", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversation rows: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) TurnIDsNewestFirst(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id FROM conversation_buffer WHERE user_id=$1
		 ORDER BY created_at DESC, seq DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query turn ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan turn id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn ids: %w", err)
	}
	return ids, nil
}

func (s *PostgresStore) DeleteTurns(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM conversation_buffer WHERE id = ANY($1)`, ids); err != nil {
		return fmt.Errorf("delete turns: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteUserTurns(ctx context.Context, userID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM conversation_buffer WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("delete user turns: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
