// Package config provides centralized configuration management for packcat.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all server configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Fetch    FetchConfig
	Import   ImportConfig
	Download DownloadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ClientConfig is the subset used by the packctl CLI, which has no database.
type ClientConfig struct {
	Fetch    FetchConfig
	Download DownloadConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 120s).
	// Imports fetch remote catalogs inside the request, so this is longer than a plain API.
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"120s"`

	// TrustedProxies lists proxy CIDRs whose X-Real-IP / X-Forwarded-For
	// headers are believed. Empty means client headers are ignored.
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES"`

	// MaxUploadBytes caps an uploaded catalog (default: 20MB)
	MaxUploadBytes int64 `env:"SERVER_MAX_UPLOAD_BYTES" default:"20971520"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// FetchConfig holds settings for retrieving remote catalogs and pack files.
type FetchConfig struct {
	// Timeout bounds a single HTTP request including the body (default: 60s)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"60s"`

	// MaxCatalogBytes caps a catalog or JSON response body (default: 20MB)
	MaxCatalogBytes int64 `env:"FETCH_MAX_CATALOG_BYTES" default:"20971520"`

	// MaxPackBytes caps a single pack download (default: 2GB)
	MaxPackBytes int64 `env:"FETCH_MAX_PACK_BYTES" default:"2147483648"`

	UserAgent string `env:"FETCH_USER_AGENT" default:"packcat/1.0"`

	// AllowedHosts limits catalog and pack URLs to these hosts and their
	// subdomains. Empty allows any host, so set it (or REQUIRE_API_KEY) on any
	// server reachable by untrusted clients.
	AllowedHosts []string `env:"FETCH_ALLOWED_HOSTS"`
}

// ImportConfig holds catalog import settings.
type ImportConfig struct {
	// MaxConcurrent is the maximum number of parallel imports (default: 4)
	MaxConcurrent int `env:"IMPORT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for an import slot (default: 10s)
	MaxWaitTime time.Duration `env:"IMPORT_MAX_WAIT_TIME" default:"10s"`

	// Timeout is the maximum duration for one import (default: 2m)
	Timeout time.Duration `env:"IMPORT_TIMEOUT" default:"2m"`
}

// DownloadConfig holds pack download settings.
type DownloadConfig struct {
	// Dir is where downloaded packs are written (default: ./packs)
	Dir string `env:"DOWNLOAD_DIR" default:"packs"`

	// MaxConcurrent is the maximum number of parallel file downloads (default: 3)
	MaxConcurrent int `env:"DOWNLOAD_MAX_CONCURRENT" default:"3"`

	// MaxWaitTime is how long a download waits for a slot (default: 5m)
	MaxWaitTime time.Duration `env:"DOWNLOAD_MAX_WAIT_TIME" default:"5m"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig protects the mutating API routes.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key checks on imports and downloads (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
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
	return c.Host + ":" + strconv.Itoa(c.Port)
}
