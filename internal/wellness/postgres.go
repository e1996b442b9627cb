package wellness

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads wellness content from the wellness_content table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS wellness_content (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT ''
	);`); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init wellness schema: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Pick(ctx context.Context, kind Kind) (*Item, error) {
	var item Item
	err := s.pool.QueryRow(ctx,
		`SELECT id, type, title, content FROM wellness_content
		 WHERE type=$1 ORDER BY random() LIMIT 1`,
		string(kind),
	).Scan(&item.ID, &item.Type, &item.Title, &item.Content)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pick wellness content: %w", err)
	}
	return &item, nil
}

func (s *PostgresStore) Add(ctx context.Context, item Item) (Item, error) {
	item, err := normalizeItem(item)
	if err != nil {
		return Item{}, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO wellness_content (id, type, title, content) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET type=EXCLUDED.type, title=EXCLUDED.title, content=EXCLUDED.content`,
		item.ID, string(item.Type), item.Title, item.Content,
	)
	if err != nil {
		return Item{}, fmt.Errorf("upsert wellness content: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) List(ctx context.Context, kind Kind) ([]Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, title, content FROM wellness_content
		 WHERE $1 = '' OR type=$1 ORDER BY type, id`,
		string(kind),
	)
	if err != nil {
		return nil, fmt.Errorf("list wellness content: %w", err)
	}
	defer rows.Close()

	out := []Item{}
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Type, &item.Title, &item.Content); err != nil {
			return nil, fmt.Errorf("scan wellness row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wellness rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
