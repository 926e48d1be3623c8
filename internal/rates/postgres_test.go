package rates

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// openTestPostgres connects to DATABASE_URL, skipping when it is unset.
// Each test writes under its own key and removes it afterwards.
func openTestPostgres(t *testing.T) (*PostgresBackend, string) {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set, skipping postgres integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New: %v", err)
	}
	t.Cleanup(pool.Close)

	b := NewPostgresBackend(pool)
	if err := b.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	// Idempotent.
	if err := b.EnsureSchema(ctx); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}

	key := "test_" + t.Name()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM rate_cache WHERE key = $1`, key)
	})
	return b, key
}

func TestPostgresBackend_PutGet(t *testing.T) {
	b, key := openTestPostgres(t)
	ctx := context.Background()

	if _, ok, err := b.Get(ctx, key); err != nil || ok {
		t.Fatalf("empty Get = ok %v, err %v", ok, err)
	}

	if err := b.Put(ctx, key, `{"EUR":0.92}`, time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, ok, err := b.Get(ctx, key)
	if err != nil || !ok || v != `{"EUR":0.92}` {
		t.Fatalf("Get = %q, %v, %v", v, ok, err)
	}

	if err := b.Put(ctx, key, `{"EUR":0.95}`, time.Hour); err != nil {
		t.Fatalf("overwrite Put: %v", err)
	}
	if v, _, _ := b.Get(ctx, key); v != `{"EUR":0.95}` {
		t.Errorf("Get after overwrite = %q", v)
	}
}

func TestPostgresBackend_Expiry(t *testing.T) {
	b, key := openTestPostgres(t)
	ctx := context.Background()

	clock := newClock()
	clock.now = time.Now().UTC()
	b.now = clock.Now

	if err := b.Put(ctx, key, `{"EUR":0.92}`, 24*time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	clock.Advance(23 * time.Hour)
	if _, ok, _ := b.Get(ctx, key); !ok {
		t.Error("entry should still be live")
	}

	clock.Advance(time.Hour)
	if _, ok, _ := b.Get(ctx, key); ok {
		t.Error("entry should have expired")
	}

	// An expired row is replaced by the next Put.
	if err := b.Put(ctx, key, `{"EUR":0.97}`, time.Hour); err != nil {
		t.Fatalf("Put after expiry: %v", err)
	}
	if v, ok, _ := b.Get(ctx, key); !ok || v != `{"EUR":0.97}` {
		t.Errorf("Get after re-put = %q, %v", v, ok)
	}
}
