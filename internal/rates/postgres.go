package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores rates in a key/value table with an expiry column.
// Expired rows read as misses and are overwritten by the next Put.
type PostgresBackend struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresBackend wraps pool. Call EnsureSchema before first use.
func NewPostgresBackend(pool *pgxpool.Pool) *PostgresBackend {
	return &PostgresBackend{pool: pool, now: time.Now}
}

// EnsureSchema creates the cache table if it does not exist.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	_, err := b.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rate_cache (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("rate cache: create table: %w", err)
	}
	return nil
}

func (b *PostgresBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := b.pool.QueryRow(ctx,
		`SELECT value FROM rate_cache WHERE key = $1 AND expires_at > $2`,
		key, b.now().UTC(),
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("rate cache: get %s: %w", key, err)
	}
	return value, true, nil
}

func (b *PostgresBackend) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	_, err := b.pool.Exec(ctx, `
		INSERT INTO rate_cache (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			expires_at = EXCLUDED.expires_at`,
		key, value, b.now().UTC().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("rate cache: put %s: %w", key, err)
	}
	return nil
}
