// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"net"
	"strconv"
	"time"
)

// Cache backend names accepted by CACHE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Rates    RatesConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Database DatabaseConfig
	SQLite   SQLiteConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 3000)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"3000"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 20s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"20s"`
}

// DataConfig holds the static dataset location.
type DataConfig struct {
	// Dir holds countries.json, gdp.json and the other documents (default: public)
	Dir string `env:"DATA_DIR" default:"public"`

	// LoadTimeout bounds each dataset load, at startup and on first use (default: 10s)
	LoadTimeout time.Duration `env:"DATA_LOAD_TIMEOUT" default:"10s"`
}

// RatesConfig holds exchange rate upstream settings.
type RatesConfig struct {
	URL          string        `env:"EXCHANGE_RATE_URL" default:"https://api.exchangerate-api.com/v4/latest/USD"`
	FetchTimeout time.Duration `env:"EXCHANGE_RATE_TIMEOUT" default:"10s"`

	// TTL is how long fetched rates stay fresh (default: 24h)
	TTL time.Duration `env:"EXCHANGE_RATE_TTL" default:"24h"`

	// RefreshInterval is how often the background refresher runs; 0 disables it
	RefreshInterval time.Duration `env:"EXCHANGE_RATE_REFRESH_INTERVAL" default:"1h"`
}

// CacheConfig selects where exchange rates are cached.
type CacheConfig struct {
	// Backend is one of memory, redis, postgres, sqlite (default: memory)
	Backend string `env:"CACHE_BACKEND" default:"memory"`
}

// RedisConfig holds Redis connection settings for the redis backend.
type RedisConfig struct {
	Host     string `env:"REDIS_HOST" default:"127.0.0.1"`
	Port     int    `env:"REDIS_PORT" default:"6379"`
	Password string `env:"REDIS_PASS" envAlt:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" default:"0"`
}

// DatabaseConfig holds PostgreSQL settings for the postgres backend.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string, required for the postgres backend.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"4"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// SQLiteConfig holds settings for the sqlite backend.
type SQLiteConfig struct {
	Path string `env:"SQLITE_PATH" default:"data/rates.db"`
}

// RateLimitConfig holds per-client request limits.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// EnableHSTS enables Strict-Transport-Security (default: true)
	EnableHSTS bool `env:"SECURITY_ENABLE_HSTS" default:"true"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Addr returns the Redis address in host:port format.
func (c *RedisConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
