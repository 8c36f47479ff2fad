package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS archive_records (
	kind TEXT NOT NULL,
	id TEXT NOT NULL,
	body TEXT NOT NULL,
	saved_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (kind, id)
);
`

type sqliteStore struct {
	db *sql.DB
}

func openSQLite(ctx context.Context, path string) (*sqliteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is empty: %w", ErrUnsupportedDSN)
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases shared and writes serialized.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) put(ctx context.Context, kind, id string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO archive_records (kind, id, body) VALUES (?, ?, ?)
		 ON CONFLICT (kind, id) DO UPDATE SET body = excluded.body, saved_at = CURRENT_TIMESTAMP`,
		kind, id, string(body),
	)
	return err
}

func (s *sqliteStore) get(ctx context.Context, kind, id string) ([]byte, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM archive_records WHERE kind = ? AND id = ?`, kind, id,
	).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(body), nil
}

func (s *sqliteStore) close() error { return s.db.Close() }
