package core

// scheduler.go keeps the exchange rate cache warm in the background.
//
// Without it, the first request after the cache expires pays for the
// upstream fetch. The refresher runs on start and then on every tick, so
// requests normally see a fresh cache. It logs each cycle but never stops
// the application; the rate source already degrades to stale or empty rates.

import (
	"context"
	"log/slog"
	"time"
)

// DefaultRateRefreshInterval is used when a non-positive interval is given.
const DefaultRateRefreshInterval = time.Hour

// StartRateRefresher periodically asks the rate source for rates.
// It runs immediately on start, then every interval, and returns when ctx
// is cancelled.
func (s *Service) StartRateRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRateRefreshInterval
	}
	slog.Info("rate refresher started", "interval", interval.String())

	s.refreshRates(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("rate refresher stopped")
			return
		case <-ticker.C:
			s.refreshRates(ctx)
		}
	}
}

// refreshRates performs one refresh cycle.
func (s *Service) refreshRates(ctx context.Context) {
	start := time.Now()
	rates := s.rates.Rates(ctx)
	slog.Debug("rate refresh completed",
		"currencies", len(rates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	if len(rates) == 0 {
		slog.Warn("rate refresh returned no rates")
	}
}
