// Package rates provides the exchange-rate cache that prices each country's
// first currency against USD.
//
// Lookup order:
//   - external backend (Redis, Postgres or SQLite) by a fixed key, when one
//     is configured; the backend enforces expiry itself
//   - in-process entry younger than the TTL
//   - upstream fetch, stored into whichever layer is active
//
// On upstream failure the in-process entry is returned regardless of age,
// otherwise an empty map. Rates never returns an error.
package rates

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/JonMunkholm/WorldInfo/internal/metrics"
)

// CacheKey is the fixed backend key holding the serialized rates.
const CacheKey = "exchange_rates"

// DefaultTTL is how long fetched rates stay fresh.
const DefaultTTL = 24 * time.Hour

// Backend is an external key-value store with per-key expiry.
type Backend interface {
	// Get returns the value under key. ok is false on a miss or when the
	// value has expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Put stores value under key, expiring after ttl.
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// Fetcher retrieves current rates (currency code -> units per USD) upstream.
type Fetcher interface {
	Fetch(ctx context.Context) (map[string]float64, error)
}

// entry is the in-process cache slot.
type entry struct {
	rates     map[string]float64
	fetchedAt time.Time
}

// Cache is a time-bounded cache around a single upstream fetch.
// It is safe for concurrent use.
type Cache struct {
	fetcher Fetcher
	backend Backend
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger

	mu    sync.RWMutex
	local *entry

	fetches singleflight.Group
}

// Option configures a Cache.
type Option func(*Cache)

// WithBackend stores rates in an external backend instead of in process.
func WithBackend(b Backend) Option {
	return func(c *Cache) { c.backend = b }
}

// WithTTL overrides DefaultTTL.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger overrides slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) { c.logger = l }
}

// NewCache creates a cache around f.
func NewCache(f Fetcher, opts ...Option) *Cache {
	c := &Cache{
		fetcher: f,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rates returns current exchange rates. The returned map is owned by the
// caller.
func (c *Cache) Rates(ctx context.Context) map[string]float64 {
	if c.backend != nil {
		if rates, ok := c.fromBackend(ctx); ok {
			metrics.RateCacheHitsTotal.WithLabelValues("backend").Inc()
			return rates
		}
	}

	if rates, ok := c.fresh(); ok {
		metrics.RateCacheHitsTotal.WithLabelValues("memory").Inc()
		return rates
	}

	metrics.RateCacheMissesTotal.Inc()

	// The shared fetch outlives any one caller; the fetcher's own timeout
	// bounds it.
	ch := c.fetches.DoChan(CacheKey, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return c.fallback(ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return c.fallback(res.Err)
		}
		return maps.Clone(res.Val.(map[string]float64))
	}
}

// fallback serves the in-process entry regardless of age, else an empty map.
func (c *Cache) fallback(err error) map[string]float64 {
	c.logger.Warn("exchange rate fetch failed", "error", err)
	if rates, ok := c.stale(); ok {
		metrics.RateStaleServedTotal.Inc()
		return rates
	}
	return map[string]float64{}
}

// fromBackend reads and decodes the backend entry. Backend errors and
// undecodable values are treated as misses.
func (c *Cache) fromBackend(ctx context.Context) (map[string]float64, bool) {
	raw, ok, err := c.backend.Get(ctx, CacheKey)
	if err != nil {
		metrics.RateCacheErrorsTotal.WithLabelValues("get").Inc()
		c.logger.Warn("rate cache backend read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var rates map[string]float64
	if err := json.Unmarshal([]byte(raw), &rates); err != nil {
		metrics.RateCacheErrorsTotal.WithLabelValues("decode").Inc()
		c.logger.Warn("rate cache backend value invalid", "error", err)
		return nil, false
	}
	return rates, true
}

// fresh returns the in-process entry if it is younger than the TTL.
func (c *Cache) fresh() (map[string]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.local == nil || c.now().Sub(c.local.fetchedAt) >= c.ttl {
		return nil, false
	}
	return maps.Clone(c.local.rates), true
}

// stale returns the in-process entry regardless of age.
func (c *Cache) stale() (map[string]float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.local == nil {
		return nil, false
	}
	return maps.Clone(c.local.rates), true
}

// refresh fetches upstream and stores the result into the active layer.
func (c *Cache) refresh(ctx context.Context) (map[string]float64, error) {
	rates, err := c.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	if c.backend != nil {
		c.store(ctx, rates)
		return rates, nil
	}

	c.mu.Lock()
	c.local = &entry{rates: rates, fetchedAt: c.now()}
	c.mu.Unlock()

	c.logger.Debug("exchange rates cached in process", "currencies", len(rates))
	return rates, nil
}

// store writes rates to the backend. A failed write is logged; the fresh
// rates are still served.
func (c *Cache) store(ctx context.Context, rates map[string]float64) {
	data, err := json.Marshal(rates)
	if err != nil {
		c.logger.Warn("rate cache encode failed", "error", err)
		return
	}
	if err := c.backend.Put(ctx, CacheKey, string(data), c.ttl); err != nil {
		metrics.RateCacheErrorsTotal.WithLabelValues("put").Inc()
		c.logger.Warn("rate cache backend write failed", "error", err)
		return
	}
	c.logger.Debug("exchange rates cached in backend", "currencies", len(rates), "ttl", c.ttl.String())
}
