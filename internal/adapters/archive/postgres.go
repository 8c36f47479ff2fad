package archive

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS archive_records (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	body JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (kind, id)
)`

type postgresStore struct {
	pool *pgxpool.Pool
}

func openPostgres(ctx context.Context, dsn string) (*postgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &postgresStore{pool: pool}, nil
}

func (s *postgresStore) put(ctx context.Context, kind, id string, body []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO archive_records (kind, id, body) VALUES ($1, $2, $3)
		 ON CONFLICT (kind, id) DO UPDATE SET body = $3, saved_at = NOW()`,
		kind, id, string(body),
	)
	return err
}

func (s *postgresStore) get(ctx context.Context, kind, id string) ([]byte, error) {
	var body []byte
	err := s.pool.QueryRow(ctx,
		`SELECT body FROM archive_records WHERE kind = $1 AND id = $2`, kind, id,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (s *postgresStore) close() error {
	s.pool.Close()
	return nil
}
