package rates

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores rates in an embedded SQLite file. Expiry is kept as
// unix milliseconds.
type SQLiteBackend struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite: create %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	b := &SQLiteBackend{db: db, now: time.Now}
	if err := b.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return b, nil
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *SQLiteBackend) migrate() error {
	statements := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS rate_cache (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at INTEGER NOT NULL
		);`,
	}

	for _, statement := range statements {
		if _, err := b.db.Exec(statement); err != nil {
			return err
		}
	}
	return nil
}

func (b *SQLiteBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.db.QueryRowContext(ctx,
		`SELECT value FROM rate_cache WHERE key = ? AND expires_at > ?`,
		key, b.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	return value, true, nil
}

func (b *SQLiteBackend) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO rate_cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			expires_at = excluded.expires_at
	`, key, value, b.now().Add(ttl).UnixMilli())
	if err != nil {
		return fmt.Errorf("sqlite: put %s: %w", key, err)
	}
	return nil
}
