// Package config loads raw loader settings from environment variables.
// Defaults come from struct tags and every setting is validated on startup
// so a misconfigured deployment fails before it accepts uploads.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Upload    UploadConfig
	Engine    EngineConfig
	Clients   ClientsConfig
	Cache     CacheConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Retention RetentionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including upload drain (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`

	// DevStubs mounts the /devstub partner and config endpoints (default: false)
	DevStubs bool `env:"SERVER_DEV_STUBS" default:"false"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of connections to keep open (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of uploads processed at once (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an upload slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// BatchSize is the number of transformed rows copied per batch (default: 1000)
	BatchSize int `env:"UPLOAD_BATCH_SIZE" default:"1000"`

	// Timeout bounds a single upload or transform operation (default: 10m)
	Timeout time.Duration `env:"UPLOAD_TIMEOUT" default:"10m"`

	// PreviewLimit is the default number of preview records (default: 10)
	PreviewLimit int `env:"UPLOAD_PREVIEW_LIMIT" default:"10"`
}

// EngineConfig holds validation and coercion settings.
type EngineConfig struct {
	// DateFormat is applied to date columns without a format (default: dd/MM/yyyy)
	DateFormat string `env:"ENGINE_DATE_FORMAT" default:"dd/MM/yyyy"`

	// DateFallbacks are tried after the column format. Empty keeps the built-in list.
	DateFallbacks []string `env:"ENGINE_DATE_FALLBACKS"`
}

// ClientsConfig holds the remote config and partner service settings.
type ClientsConfig struct {
	// ConfigServiceURL is the base URL of the config service (required)
	ConfigServiceURL string `env:"CONFIG_SERVICE_URL" required:"true"`

	// PartnerServiceURL is the base URL of the partner service (required)
	PartnerServiceURL string `env:"PARTNER_SERVICE_URL" required:"true"`

	// Timeout is the per-request timeout for both clients (default: 10s)
	Timeout time.Duration `env:"CLIENT_TIMEOUT" default:"10s"`
}

// CacheConfig holds schema cache settings.
type CacheConfig struct {
	// RedisURL enables the Redis schema cache when set
	RedisURL string `env:"REDIS_URL"`

	// SchemaTTL is how long a fetched schema stays cached (default: 5m)
	SchemaTTL time.Duration `env:"SCHEMA_CACHE_TTL" default:"5m"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// RequireAPIKey enables X-API-Key authentication on /api (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted API keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// RetentionConfig holds the stored upload purge settings.
type RetentionConfig struct {
	// Days is how long uploads and their records are kept (default: 30)
	Days int `env:"RETENTION_DAYS" default:"30"`

	// CheckInterval is how often the purge job runs (default: 24h)
	CheckInterval time.Duration `env:"RETENTION_CHECK_INTERVAL" default:"24h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// MaxAge returns the retention window as a duration.
func (c *RetentionConfig) MaxAge() time.Duration {
	return time.Duration(c.Days) * 24 * time.Hour
}
