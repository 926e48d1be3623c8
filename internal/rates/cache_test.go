package rates

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeFetcher struct {
	mu    sync.Mutex
	rates map[string]float64
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(context.Context) (map[string]float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64, len(f.rates))
	for k, v := range f.rates {
		out[k] = v
	}
	return out, nil
}

func (f *fakeFetcher) set(rates map[string]float64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rates, f.err = rates, err
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type putCall struct {
	key, value string
	ttl        time.Duration
}

type fakeBackend struct {
	mu     sync.Mutex
	values map[string]string
	getErr error
	putErr error
	puts   []putCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{values: make(map[string]string)}
}

func (b *fakeBackend) Get(_ context.Context, key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.getErr != nil {
		return "", false, b.getErr
	}
	v, ok := b.values[key]
	return v, ok, nil
}

func (b *fakeBackend) Put(_ context.Context, key, value string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts = append(b.puts, putCall{key: key, value: value, ttl: ttl})
	if b.putErr != nil {
		return b.putErr
	}
	b.values[key] = value
	return nil
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func TestCache_MemoryFreshHit(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	clock := newClock()
	c := NewCache(f, WithClock(clock.Now))

	first := c.Rates(context.Background())
	clock.Advance(23 * time.Hour)
	second := c.Rates(context.Background())

	if f.count() != 1 {
		t.Errorf("fetch calls = %d, want 1", f.count())
	}
	if first["EUR"] != 0.92 || second["EUR"] != 0.92 {
		t.Errorf("rates = %v, %v", first, second)
	}
}

func TestCache_MemoryExpires(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	clock := newClock()
	c := NewCache(f, WithClock(clock.Now))

	c.Rates(context.Background())
	clock.Advance(24 * time.Hour)
	f.set(map[string]float64{"EUR": 0.95}, nil)

	got := c.Rates(context.Background())
	if f.count() != 2 {
		t.Errorf("fetch calls = %d, want 2", f.count())
	}
	if got["EUR"] != 0.95 {
		t.Errorf("EUR = %v, want refreshed 0.95", got["EUR"])
	}
}

func TestCache_StaleOnError(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	clock := newClock()
	c := NewCache(f, WithClock(clock.Now))

	c.Rates(context.Background())
	clock.Advance(72 * time.Hour)
	f.set(nil, errors.New("upstream down"))

	got := c.Rates(context.Background())
	if got["EUR"] != 0.92 {
		t.Errorf("expected stale rates, got %v", got)
	}
}

func TestCache_ColdFailureReturnsEmpty(t *testing.T) {
	f := &fakeFetcher{err: errors.New("upstream down")}
	c := NewCache(f)

	got := c.Rates(context.Background())
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil map, got %v", got)
	}
}

func TestCache_ReturnsCopy(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	c := NewCache(f)

	got := c.Rates(context.Background())
	got["EUR"] = 100

	if again := c.Rates(context.Background()); again["EUR"] != 0.92 {
		t.Errorf("cache entry mutated through returned map: %v", again)
	}
}

func TestCache_BackendHitSkipsFetch(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	b := newFakeBackend()
	b.values[CacheKey] = `{"GBP":0.79}`
	c := NewCache(f, WithBackend(b))

	got := c.Rates(context.Background())
	if f.count() != 0 {
		t.Errorf("fetch calls = %d, want 0", f.count())
	}
	if got["GBP"] != 0.79 {
		t.Errorf("rates = %v, want backend value", got)
	}
}

func TestCache_BackendMissStoresWithTTL(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	b := newFakeBackend()
	c := NewCache(f, WithBackend(b))

	got := c.Rates(context.Background())
	if got["EUR"] != 0.92 {
		t.Errorf("rates = %v", got)
	}

	if len(b.puts) != 1 {
		t.Fatalf("backend puts = %d, want 1", len(b.puts))
	}
	put := b.puts[0]
	if put.key != CacheKey || put.ttl != 24*time.Hour {
		t.Errorf("put key=%q ttl=%v", put.key, put.ttl)
	}
	var stored map[string]float64
	if err := json.Unmarshal([]byte(put.value), &stored); err != nil || stored["EUR"] != 0.92 {
		t.Errorf("stored value = %q (%v)", put.value, err)
	}

	if _, ok := c.stale(); ok {
		t.Error("in-process entry should stay empty when a backend is active")
	}
}

func TestCache_BackendErrorsDegrade(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	b := newFakeBackend()
	b.getErr = errors.New("connection refused")
	b.putErr = errors.New("connection refused")
	c := NewCache(f, WithBackend(b))

	got := c.Rates(context.Background())
	if got["EUR"] != 0.92 {
		t.Errorf("expected fresh rates despite backend errors, got %v", got)
	}
}

func TestCache_BackendInvalidValueIsMiss(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	b := newFakeBackend()
	b.values[CacheKey] = "not json"
	c := NewCache(f, WithBackend(b))

	got := c.Rates(context.Background())
	if f.count() != 1 || got["EUR"] != 0.92 {
		t.Errorf("calls=%d rates=%v", f.count(), got)
	}
}

func TestCache_BackendColdFailureReturnsEmpty(t *testing.T) {
	f := &fakeFetcher{err: errors.New("upstream down")}
	c := NewCache(f, WithBackend(newFakeBackend()))

	if got := c.Rates(context.Background()); len(got) != 0 {
		t.Errorf("expected empty map, got %v", got)
	}
}

func TestCache_ConcurrentCallers(t *testing.T) {
	f := &fakeFetcher{rates: map[string]float64{"EUR": 0.92}}
	c := NewCache(f)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := c.Rates(context.Background()); got["EUR"] != 0.92 {
				t.Errorf("rates = %v", got)
			}
		}()
	}
	wg.Wait()
}

// gateFetcher blocks every fetch until release is closed or its context ends.
type gateFetcher struct {
	fakeFetcher
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGateFetcher(rates map[string]float64) *gateFetcher {
	return &gateFetcher{
		fakeFetcher: fakeFetcher{rates: rates},
		entered:     make(chan struct{}),
		release:     make(chan struct{}),
	}
}

func (f *gateFetcher) Fetch(ctx context.Context) (map[string]float64, error) {
	f.once.Do(func() { close(f.entered) })
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return f.fakeFetcher.Fetch(ctx)
}

func TestCache_CancelledCallerDoesNotFailOthers(t *testing.T) {
	f := newGateFetcher(map[string]float64{"EUR": 0.92})
	c := NewCache(f)

	ctxA, cancelA := context.WithCancel(context.Background())
	gotA := make(chan map[string]float64, 1)
	go func() { gotA <- c.Rates(ctxA) }()
	<-f.entered

	gotB := make(chan map[string]float64, 1)
	go func() { gotB <- c.Rates(context.Background()) }()

	cancelA()
	select {
	case rates := <-gotA:
		if len(rates) != 0 {
			t.Errorf("cancelled caller rates = %v, want empty", rates)
		}
	case <-time.After(time.Second):
		t.Fatal("cancelled caller still waiting on the shared fetch")
	}

	close(f.release)
	select {
	case rates := <-gotB:
		if rates["EUR"] != 0.92 {
			t.Errorf("live caller rates = %v, want fetched rates", rates)
		}
	case <-time.After(time.Second):
		t.Fatal("live caller did not return")
	}

	if got := c.Rates(context.Background()); got["EUR"] != 0.92 {
		t.Errorf("rates after fetch = %v", got)
	}
	if n := f.count(); n != 1 {
		t.Errorf("fetch calls = %d, want 1", n)
	}
}

func TestWithTTL_IgnoresNonPositive(t *testing.T) {
	c := NewCache(&fakeFetcher{}, WithTTL(0))
	if c.ttl != DefaultTTL {
		t.Errorf("ttl = %v, want default", c.ttl)
	}
	c = NewCache(&fakeFetcher{}, WithTTL(time.Hour))
	if c.ttl != time.Hour {
		t.Errorf("ttl = %v, want 1h", c.ttl)
	}
}
