package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// dialect holds the statements that differ between SQL engines.
type dialect struct {
	name   string
	get    string
	upsert string
}

var postgresDialect = dialect{
	name: "postgres",
	get: `
		SELECT value
		FROM kv_entries
		WHERE key = $1
	`,
	upsert: `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`,
}

var sqliteDialect = dialect{
	name: "sqlite",
	get: `
		SELECT value
		FROM kv_entries
		WHERE key = ?
	`,
	upsert: `
		INSERT INTO kv_entries (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key)
		DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`,
}

// SQLStore keeps values in a kv_entries table.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

var _ Store = (*SQLStore)(nil)

// Get reads the row for key.
func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	if err := s.db.QueryRowContext(ctx, s.dialect.get, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%s get %q: %w", s.dialect.name, key, err)
	}
	return []byte(value), nil
}

// Put upserts the row for key.
func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.upsert, key, string(value)); err != nil {
		return fmt.Errorf("%s put %q: %w", s.dialect.name, key, err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
