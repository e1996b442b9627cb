package vendors

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vendors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL,
			city TEXT NOT NULL,
			recommended_price DOUBLE PRECISION NOT NULL DEFAULT 0,
			style_tags TEXT[] NOT NULL DEFAULT '{}',
			source_url TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_vendors_category_city ON vendors (category, city, recommended_price);`,
		`CREATE TABLE IF NOT EXISTS vendor_shortlist (
			user_id TEXT NOT NULL,
			vendor_id TEXT NOT NULL REFERENCES vendors(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (user_id, vendor_id)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return &PostgresStore{pool: pool}, nil
}

const vendorColumns = `v.id, v.name, v.category, v.city, v.recommended_price, v.style_tags, v.source_url`

func (s *PostgresStore) Recommend(ctx context.Context, q Query) ([]Vendor, error) {
	q = normalizeQuery(q)
	rows, err := s.pool.Query(ctx,
		`SELECT `+vendorColumns+` FROM vendors v
		  WHERE v.category=$1 AND v.city=$2
		    AND ($3::float8 <= 0 OR v.recommended_price <= $3::float8)
		    AND v.style_tags @> $4::text[]
		  ORDER BY v.recommended_price ASC, v.name ASC
		  LIMIT $5`,
		q.Category, q.City, q.MaxBudget, q.StyleTags, q.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recommend vendors: %w", err)
	}
	return collectVendors(rows)
}

func (s *PostgresStore) AddVendor(ctx context.Context, v Vendor) (Vendor, error) {
	v, err := normalizeVendor(v)
	if err != nil {
		return Vendor{}, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO vendors (id, name, category, city, recommended_price, style_tags, source_url)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name,
			category=EXCLUDED.category,
			city=EXCLUDED.city,
			recommended_price=EXCLUDED.recommended_price,
			style_tags=EXCLUDED.style_tags,
			source_url=EXCLUDED.source_url`,
		v.ID, v.Name, v.Category, v.City, v.RecommendedPrice, v.StyleTags, v.SourceURL,
	)
	if err != nil {
		return Vendor{}, fmt.Errorf("upsert vendor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) GetVendor(ctx context.Context, id string) (Vendor, error) {
	var v Vendor
	err := s.pool.QueryRow(ctx,
		`SELECT `+vendorColumns+` FROM vendors v WHERE v.id=$1`, id,
	).Scan(&v.ID, &v.Name, &v.Category, &v.City, &v.RecommendedPrice, &v.StyleTags, &v.SourceURL)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Vendor{}, ErrNotFound
		}
		return Vendor{}, fmt.Errorf("get vendor: %w", err)
	}
	return v, nil
}

func (s *PostgresStore) AddToShortlist(ctx context.Context, userID, vendorID string) error {
	if _, err := s.GetVendor(ctx, vendorID); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO vendor_shortlist (user_id, vendor_id) VALUES ($1,$2)
		 ON CONFLICT (user_id, vendor_id) DO NOTHING`,
		userID, vendorID,
	)
	if err != nil {
		return fmt.Errorf("add to shortlist: %w", err)
	}
	return nil
}

func (s *PostgresStore) Shortlist(ctx context.Context, userID string) ([]Vendor, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+vendorColumns+` FROM vendor_shortlist sl
		   JOIN vendors v ON v.id = sl.vendor_id
		  WHERE sl.user_id=$1 ORDER BY sl.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list shortlist: %w", err)
	}
	return collectVendors(rows)
}

func (s *PostgresStore) RemoveFromShortlist(ctx context.Context, userID, vendorID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM vendor_shortlist WHERE user_id=$1 AND vendor_id=$2`,
		userID, vendorID,
	); err != nil {
		return fmt.Errorf("remove from shortlist: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func collectVendors(rows pgx.Rows) ([]Vendor, error) {
	defer rows.Close()
	out := []Vendor{}
	for rows.Next() {
		var v Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Category, &v.City, &v.RecommendedPrice, &v.StyleTags, &v.SourceURL); err != nil {
			return nil, fmt.Errorf("scan vendor row: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor rows: %w", err)
	}
	return out, nil
}
