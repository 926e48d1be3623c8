package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/JonMunkholm/WorldInfo/internal/metrics"
)

// DefaultURL is the upstream rate provider, quoting against USD.
const DefaultURL = "https://api.exchangerate-api.com/v4/latest/USD"

// DefaultFetchTimeout bounds a single upstream call.
const DefaultFetchTimeout = 10 * time.Second

// maxResponseBytes caps the upstream body.
const maxResponseBytes = 1 << 20

// errNoRates is returned when the upstream body carries no rates object.
var errNoRates = errors.New("exchange rates: response has no rates")

// HTTPFetcher fetches rates from a JSON endpoint shaped as {"rates": {...}}.
type HTTPFetcher struct {
	URL     string
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPFetcher creates a fetcher for url. An empty url uses DefaultURL and
// a non-positive timeout uses DefaultFetchTimeout.
func NewHTTPFetcher(url string, timeout time.Duration) *HTTPFetcher {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &HTTPFetcher{
		URL:     url,
		Client:  &http.Client{},
		Timeout: timeout,
	}
}

type ratesResponse struct {
	Rates map[string]float64 `json:"rates"`
}

// Fetch performs one upstream request. Non-2xx statuses, timeouts and bodies
// without rates are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context) (map[string]float64, error) {
	start := time.Now()
	rates, err := f.fetch(ctx)

	metrics.RateFetchDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RateFetchTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.RateFetchTotal.WithLabelValues("ok").Inc()
	return rates, nil
}

func (f *HTTPFetcher) fetch(ctx context.Context) (map[string]float64, error) {
	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("exchange rates: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange rates: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("exchange rates: upstream status %d", resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("exchange rates: decode: %w", err)
	}
	if body.Rates == nil {
		return nil, errNoRates
	}
	return body.Rates, nil
}
