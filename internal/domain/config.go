package domain

import (
	"time"
)

// SummaryRecord is a persisted synthesis result: the structured summary plus
// enough request metadata for audit retrieval.
type SummaryRecord struct {
	ID               string          `json:"id"`
	PatientID        string          `json:"patient_id"`
	RequestID        string          `json:"request_id,omitempty"`
	Summary          *PatientSummary `json:"summary"`
	LabCount         int             `json:"lab_count"`
	SkippedCount     int             `json:"skipped_count"`
	ProcessingTimeMs int             `json:"processing_time_ms"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Config represents the main application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Review   ReviewConfig   `mapstructure:"review"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	RateLimitPerSec float64       `mapstructure:"rate_limit_per_sec"`
	RateLimitBurst  int           `mapstructure:"rate_limit_burst"`
}

// DatabaseConfig represents summary-store database configuration.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Database        string        `mapstructure:"database"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// CacheConfig represents the rendered-summary cache configuration.
type CacheConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	RedisURL    string        `mapstructure:"redis_url"`
	DefaultTTL  time.Duration `mapstructure:"default_ttl"`
	MaxRetries  int           `mapstructure:"max_retries"`
	PoolSize    int           `mapstructure:"pool_size"`
	PoolTimeout time.Duration `mapstructure:"pool_timeout"`
}

// CatalogConfig controls reference catalog loading. The built-in table is
// always the base; File, when set, overlays or replaces entries.
type CatalogConfig struct {
	File string `mapstructure:"file"`
}

// ReviewConfig controls the clinician review store.
type ReviewConfig struct {
	Backend     string `mapstructure:"backend"` // "sqlite" or "postgres"
	SQLitePath  string `mapstructure:"sqlite_path"`
	DatabaseURL string `mapstructure:"database_url"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"
	Output string `mapstructure:"output"`
}
