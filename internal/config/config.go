// Package config loads application settings from environment variables with
// defaults and validates them on startup so misconfiguration fails fast.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Session  SessionConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
	Janitor  JanitorConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout stays 0 so SSE streams are not cut off
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds the wait for running uploads and open connections
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for non-streaming requests
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds the optional gallery database. An empty URL keeps
// the gallery in memory.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"1"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// UploadConfig holds the image uploader settings.
type UploadConfig struct {
	// MaxSizeMB is the largest accepted file in mebibytes; fractions allowed (default: 10)
	MaxSizeMB float64 `env:"UPLOAD_MAX_SIZE_MB" default:"10"`

	// AcceptedTypes is the comma-separated MIME allow-list
	AcceptedTypes []string `env:"UPLOAD_ACCEPTED_TYPES" default:"image/jpeg,image/png,image/gif,image/webp"`

	// SimulatedDuration is how long a fake upload takes (default: 2s)
	SimulatedDuration time.Duration `env:"UPLOAD_SIMULATED_DURATION" default:"2s"`

	// TickInterval is how often progress advances (default: 50ms)
	TickInterval time.Duration `env:"UPLOAD_TICK_INTERVAL" default:"50ms"`

	// MaxConcurrent caps simultaneous simulations across all uploaders (default: 5)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a selection waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`

	// PreviewMaxWidth downsizes wider PNG/JPEG previews; 0 disables (default: 0)
	PreviewMaxWidth int `env:"UPLOAD_PREVIEW_MAX_WIDTH" default:"0"`

	// IdleTTL is how long an untouched uploader survives (default: 30m)
	IdleTTL time.Duration `env:"UPLOAD_IDLE_TTL" default:"30m"`
}

// MaxBytes returns the size limit in bytes.
func (c UploadConfig) MaxBytes() int64 {
	return int64(c.MaxSizeMB * 1024 * 1024)
}

// SessionConfig selects where signed-in users are remembered.
type SessionConfig struct {
	// Backend is memory, file or redis (default: memory)
	Backend string `env:"SESSION_BACKEND" default:"memory"`

	// File is the JSON document used by the file backend
	File string `env:"SESSION_FILE" default:"data/sessions.json"`

	// RedisURL is used by the redis backend
	RedisURL string `env:"SESSION_REDIS_URL" envAlt:"REDIS_URL"`

	// TTL expires redis sessions; 0 keeps them (default: 720h)
	TTL time.Duration `env:"SESSION_TTL" default:"720h"`

	CookieName string `env:"SESSION_COOKIE_NAME" default:"leavetrack_session"`

	// CookieSecure marks the session cookie HTTPS-only (default: false)
	CookieSecure bool `env:"SESSION_COOKIE_SECURE" default:"false"`

	// SignupDelay is the simulated account-creation latency (default: 1s)
	SignupDelay time.Duration `env:"SESSION_SIGNUP_DELAY" default:"1s"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// UploadLimit is requests per minute for file selection (default: 10)
	UploadLimit int `env:"RATE_LIMIT_UPLOAD" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey protects destructive gallery endpoints
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

	// File also writes logs to a rotated file when set
	File string `env:"LOG_FILE"`

	MaxSizeMB  int `env:"LOG_MAX_SIZE_MB" default:"100"`
	MaxBackups int `env:"LOG_MAX_BACKUPS" default:"3"`
}

// JanitorConfig holds the idle uploader sweep settings.
type JanitorConfig struct {
	CheckInterval time.Duration `env:"JANITOR_CHECK_INTERVAL" default:"1m"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
