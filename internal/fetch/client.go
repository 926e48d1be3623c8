// Package fetch downloads the upstream country datasets and writes them as
// the documents the dashboard serves from its data directory.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// UserAgent identifies the fetcher to upstream APIs. Wikidata rejects
// anonymous clients.
const UserAgent = "WorldInfo-Fetch/1.0 (+https://github.com/JonMunkholm/WorldInfo)"

// maxBody bounds any single upstream response.
const maxBody = 64 << 20

// Client is an HTTP client that throttles requests with a token bucket and
// bounds each one with a timeout.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	timeout time.Duration
}

// NewClient creates a client allowing perSecond requests per second with a
// burst of one. perSecond <= 0 disables throttling.
func NewClient(timeout time.Duration, perSecond float64) *Client {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &Client{
		http:    &http.Client{},
		limiter: rate.NewLimiter(limit, 1),
		timeout: timeout,
	}
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.URL, e.Status, http.StatusText(e.Status))
}

// Get fetches url and returns the body.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, rawURL, nil, nil)
}

// PostForm posts form-encoded values and returns the body.
func (c *Client) PostForm(ctx context.Context, rawURL string, form url.Values, accept string) ([]byte, error) {
	headers := map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
		"Accept":       accept,
	}
	return c.do(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()), headers)
}

func (c *Client) do(ctx context.Context, method, rawURL string, body io.Reader, headers map[string]string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{URL: rawURL, Status: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rawURL, err)
	}
	return data, nil
}
