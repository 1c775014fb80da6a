// Package config provides configuration management for the lab synthesis
// service: YAML file, environment variables, and defaults, in that order of
// precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

// Manager implements the ConfigManager interface using Viper.
type Manager struct {
	v      *viper.Viper
	config *domain.Config
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	m := &Manager{v: viper.New()}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from file, environment and defaults.
func (m *Manager) loadConfig() error {
	m.v.SetConfigName("config")
	m.v.SetConfigType("yaml")
	m.v.AddConfigPath(".")
	m.v.AddConfigPath("./config")
	m.v.AddConfigPath("/etc/labsynth/")

	m.v.SetEnvPrefix("LABSYNTH")
	m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	m.v.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and environment variables suffice.
	if err := m.v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := m.v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = config
	return nil
}

// setDefaults sets default configuration values.
func (m *Manager) setDefaults() {
	// Server defaults
	m.v.SetDefault("server.host", "0.0.0.0")
	m.v.SetDefault("server.port", 8080)
	m.v.SetDefault("server.read_timeout", "30s")
	m.v.SetDefault("server.write_timeout", "30s")
	m.v.SetDefault("server.idle_timeout", "120s")
	m.v.SetDefault("server.rate_limit_per_sec", 20)
	m.v.SetDefault("server.rate_limit_burst", 40)

	// Database defaults
	m.v.SetDefault("database.host", "localhost")
	m.v.SetDefault("database.port", 5432)
	m.v.SetDefault("database.database", "labsynth")
	m.v.SetDefault("database.username", "postgres")
	m.v.SetDefault("database.password", "")
	m.v.SetDefault("database.ssl_mode", "disable")
	m.v.SetDefault("database.max_open_conns", 25)
	m.v.SetDefault("database.max_idle_conns", 5)
	m.v.SetDefault("database.conn_max_lifetime", "5m")

	// Cache defaults
	m.v.SetDefault("cache.enabled", false)
	m.v.SetDefault("cache.redis_url", "redis://localhost:6379")
	m.v.SetDefault("cache.default_ttl", "1h")
	m.v.SetDefault("cache.max_retries", 3)
	m.v.SetDefault("cache.pool_size", 10)
	m.v.SetDefault("cache.pool_timeout", "4s")

	// Catalog defaults: built-in table only unless a file overlay is given.
	m.v.SetDefault("catalog.file", "")

	// Review store defaults
	m.v.SetDefault("review.backend", "sqlite")
	m.v.SetDefault("review.sqlite_path", "labsynth-reviews.db")
	m.v.SetDefault("review.database_url", "")

	// Logging defaults
	m.v.SetDefault("logging.level", "info")
	m.v.SetDefault("logging.format", "json")
	m.v.SetDefault("logging.output", "stdout")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// GetServerConfig returns server configuration.
func (m *Manager) GetServerConfig() *domain.ServerConfig {
	return &m.config.Server
}

// GetDatabaseConfig returns summary-store database configuration.
func (m *Manager) GetDatabaseConfig() *domain.DatabaseConfig {
	return &m.config.Database
}

// GetCacheConfig returns cache configuration.
func (m *Manager) GetCacheConfig() *domain.CacheConfig {
	return &m.config.Cache
}

// GetCatalogConfig returns reference catalog configuration.
func (m *Manager) GetCatalogConfig() *domain.CatalogConfig {
	return &m.config.Catalog
}

// GetReviewConfig returns clinician review store configuration.
func (m *Manager) GetReviewConfig() *domain.ReviewConfig {
	return &m.config.Review
}

// Reload reloads the configuration.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration.
func (m *Manager) Validate() error {
	config := m.config

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}
	if config.Server.RateLimitPerSec <= 0 {
		return fmt.Errorf("invalid rate limit: %v", config.Server.RateLimitPerSec)
	}

	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if config.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if config.Database.Username == "" {
		return fmt.Errorf("database username is required")
	}

	if config.Cache.Enabled && config.Cache.RedisURL == "" {
		return fmt.Errorf("redis URL is required when caching is enabled")
	}

	switch config.Review.Backend {
	case "sqlite":
		if config.Review.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for the sqlite review backend")
		}
	case "postgres":
		if config.Review.DatabaseURL == "" {
			return fmt.Errorf("database URL is required for the postgres review backend")
		}
	default:
		return fmt.Errorf("invalid review backend: %s", config.Review.Backend)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	return nil
}

// GetDatabaseConnectionString returns a formatted database connection string.
func (m *Manager) GetDatabaseConnectionString() string {
	db := m.config.Database
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		db.Host, db.Port, db.Username, db.Password, db.Database, db.SSLMode)
}

// GetRedisConnectionString returns the Redis connection string.
func (m *Manager) GetRedisConnectionString() string {
	return m.config.Cache.RedisURL
}

// IsProduction returns true if running in production mode.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(m.v.GetString("environment")) == "production"
}
