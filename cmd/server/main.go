package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/WorldInfo/internal/config"
	"github.com/JonMunkholm/WorldInfo/internal/core"
	"github.com/JonMunkholm/WorldInfo/internal/dataset"
	"github.com/JonMunkholm/WorldInfo/internal/logging"
	"github.com/JonMunkholm/WorldInfo/internal/rates"
	"github.com/JonMunkholm/WorldInfo/internal/web"
	"github.com/JonMunkholm/WorldInfo/internal/web/middleware"
)

func main() {
	// Load .env file if it exists; real environment variables win
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"data_dir", cfg.Data.Dir,
		"cache_backend", cfg.Cache.Backend,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("configuration", "config", cfg.String())

	ctx := context.Background()

	backend, closeBackend, err := openRateBackend(ctx, cfg)
	if err != nil {
		slog.Error("failed to open rate cache backend", "backend", cfg.Cache.Backend, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	opts := []rates.Option{rates.WithTTL(cfg.Rates.TTL)}
	if backend != nil {
		opts = append(opts, rates.WithBackend(backend))
	}
	cache := rates.NewCache(rates.NewHTTPFetcher(cfg.Rates.URL, cfg.Rates.FetchTimeout), opts...)

	service := core.NewService(dataset.NewDirSource(cfg.Data.Dir), cache)
	service.SetLoadTimeout(cfg.Data.LoadTimeout)

	// A failed initial load is not fatal; requests retry it
	loadCtx, cancelLoad := context.WithTimeout(ctx, cfg.Data.LoadTimeout)
	if _, err := service.Load(loadCtx); err != nil {
		slog.Warn("initial dataset load failed", "error", core.FormatUserError(err))
	}
	cancelLoad()

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(ctx)
	if cfg.Rates.RefreshInterval > 0 {
		go service.StartRateRefresher(jobCtx, cfg.Rates.RefreshInterval)
	}

	rateLimit := 0
	if cfg.Rate.Enabled {
		rateLimit = cfg.Rate.RequestsPerMinute
	}
	server := web.NewServer(service, web.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		RateLimit:      rateLimit,
		TrustedProxies: cfg.Security.TrustedProxies,
		Security: middleware.SecurityOptions{
			EnableCSP:  cfg.Security.EnableCSP,
			EnableHSTS: cfg.Security.EnableHSTS,
		},
		StaticDir:    cfg.Data.Dir,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		cancelJobs()
		closeBackend()
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// openRateBackend connects the shared rate cache store selected by
// CACHE_BACKEND. The memory backend returns a nil Backend.
func openRateBackend(ctx context.Context, cfg *config.Config) (rates.Backend, func(), error) {
	noop := func() {}

	switch cfg.Cache.Backend {
	case config.BackendRedis:
		b := rates.NewRedisBackend(rates.OpenRedis(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB))
		if err := b.Ping(ctx); err != nil {
			_ = b.Close()
			return nil, noop, fmt.Errorf("ping redis: %w", err)
		}
		slog.Info("rate cache using redis", "addr", cfg.Redis.Addr(), "db", cfg.Redis.DB)
		return b, func() { _ = b.Close() }, nil

	case config.BackendPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("parse database URL: %w", err)
		}

		// Apply pool configuration from config
		poolConfig.MaxConns = int32(cfg.Database.MaxConns)
		poolConfig.MinConns = int32(cfg.Database.MinConns)
		poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
		poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

		pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return nil, noop, fmt.Errorf("connect to database: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, noop, fmt.Errorf("ping database: %w", err)
		}

		b := rates.NewPostgresBackend(pool)
		if err := b.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, noop, err
		}
		slog.Info("rate cache using postgres")
		return b, pool.Close, nil

	case config.BackendSQLite:
		b, err := rates.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("rate cache using sqlite", "path", cfg.SQLite.Path)
		return b, func() { _ = b.Close() }, nil
	}

	return nil, noop, nil
}
