// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinfo_http_requests_total",
		Help: "HTTP requests by route pattern and status code",
	}, []string{"route", "status"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "worldinfo_http_request_duration_ms",
		Help:    "HTTP request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 2000},
	}, []string{"route"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "worldinfo_rate_limited_total",
		Help: "Requests rejected by the per-client rate limiter",
	})

	RateCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinfo_rate_cache_hits_total",
		Help: "Exchange rate cache hits by layer",
	}, []string{"layer"})
	RateCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "worldinfo_rate_cache_misses_total",
		Help: "Exchange rate lookups that required an upstream fetch",
	})
	RateCacheErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinfo_rate_cache_backend_errors_total",
		Help: "Exchange rate backend errors by operation",
	}, []string{"op"})
	RateStaleServedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "worldinfo_rate_stale_served_total",
		Help: "Upstream failures answered with a stale in-process entry",
	})
	RateFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinfo_rate_fetch_total",
		Help: "Upstream exchange rate fetches by result",
	}, []string{"result"})
	RateFetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "worldinfo_rate_fetch_duration_ms",
		Help:    "Upstream exchange rate fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "worldinfo_dataset_loads_total",
		Help: "Static dataset loads by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(RateLimitedTotal)
	prometheus.MustRegister(RateCacheHitsTotal)
	prometheus.MustRegister(RateCacheMissesTotal)
	prometheus.MustRegister(RateCacheErrorsTotal)
	prometheus.MustRegister(RateStaleServedTotal)
	prometheus.MustRegister(RateFetchTotal)
	prometheus.MustRegister(RateFetchDurationMs)
	prometheus.MustRegister(DatasetLoadsTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
