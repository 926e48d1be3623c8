package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/JonMunkholm/WorldInfo/internal/metrics"
)

// maxVisitors bounds the visitor table; past it the table is reset.
const maxVisitors = 5000

// RateLimiter throttles requests per client IP with a token bucket that
// refills requests tokens per window.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	window   time.Duration
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a limiter allowing requests per window for each
// client, and starts a goroutine that drops idle clients. Call Close to
// stop it.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	rl := newRateLimiter(requests, window, time.Now)
	go rl.cleanup()
	return rl
}

func newRateLimiter(requests int, window time.Duration, now func() time.Time) *RateLimiter {
	if requests <= 0 {
		requests = 1
	}
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Every(window / time.Duration(requests)),
		burst:    requests,
		window:   window,
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Close stops the cleanup goroutine.
func (rl *RateLimiter) Close() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// cleanup removes visitors idle for more than two windows.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}

// allow consumes a token for key. When none is available it reports how
// long until one is.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, ok := rl.visitors[key]
	if !ok {
		if len(rl.visitors) >= maxVisitors {
			clear(rl.visitors)
		}
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	res := v.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, rl.window
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Handler rejects over-limit requests with 429 and a Retry-After header in
// whole seconds.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, wait := rl.allow(ClientIP(r))
		if !ok {
			metrics.RateLimitedTotal.Inc()
			seconds := int(math.Ceil(wait.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			w.Header().Set("Retry-After", strconv.Itoa(seconds))
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
