// Package web provides the HTTP server and handlers for the World Info dashboard.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/WorldInfo/internal/core"
	"github.com/JonMunkholm/WorldInfo/internal/metrics"
	"github.com/JonMunkholm/WorldInfo/internal/web/middleware"
	"github.com/JonMunkholm/WorldInfo/internal/web/templates"
)

// Options configures the server's middleware and listener.
type Options struct {
	// RequestTimeout bounds each request; 0 disables the timeout middleware.
	RequestTimeout time.Duration

	// RateLimit is requests per minute per client IP; 0 disables limiting.
	RateLimit int

	TrustedProxies []string
	Security       middleware.SecurityOptions

	// StaticDir is served for paths no route matches; empty serves nothing.
	StaticDir string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server is the HTTP server for the dashboard.
type Server struct {
	service *core.Service
	opts    Options
	router  *chi.Mux
	server  *http.Server
	limiter *middleware.RateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, opts Options) *Server {
	s := &Server{
		service: service,
		opts:    opts,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.opts.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	if s.opts.RequestTimeout > 0 {
		s.router.Use(chimw.Timeout(s.opts.RequestTimeout))
	}

	s.router.Use(middleware.SecurityHeaders(s.opts.Security))

	if s.opts.RateLimit > 0 {
		s.limiter = middleware.NewRateLimiter(s.opts.RateLimit, time.Minute)
		s.router.Use(s.limiter.Handler)
	}

	s.router.Use(middleware.Metrics)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Pages
	s.router.Get("/", s.handleIndex)
	s.router.Method(http.MethodGet, "/chart",
		templ.Handler(templates.Layout("Country Comparison Charts", templates.PageChart, templates.ChartPage())))
	s.router.Get("/countries-table", s.handleCountriesTable)

	// Data
	s.router.Get("/chart-data", s.handleChartData)
	s.router.Get("/exchange-rates", s.handleExchangeRates)
	s.router.Route("/api", func(r chi.Router) {
		r.Get("/countriesData", s.handleCountriesData)
		r.Get("/export.csv", s.handleExportCSV)
	})

	// Operations
	s.router.Get("/healthz", s.handleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	if s.opts.StaticDir != "" {
		s.router.NotFound(http.FileServer(http.Dir(s.opts.StaticDir)).ServeHTTP)
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Close()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// writeJSON encodes v as JSON and writes it to w.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
