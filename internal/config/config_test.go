package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	// Run from an empty directory so a developer's local config.yaml cannot
	// leak into the test.
	t.Chdir(t.TempDir())
	m, err := NewManager()
	require.NoError(t, err)
	return m
}

func TestDefaults(t *testing.T) {
	m := newTestManager(t)
	cfg := m.GetConfig()

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, float64(20), cfg.Server.RateLimitPerSec)
	assert.Equal(t, "labsynth", cfg.Database.Database)
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, "", cfg.Catalog.File)
	assert.Equal(t, "sqlite", cfg.Review.Backend)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.NoError(t, m.Validate())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("LABSYNTH_SERVER_PORT", "9090")
	t.Setenv("LABSYNTH_LOGGING_LEVEL", "debug")
	t.Setenv("LABSYNTH_CATALOG_FILE", "/etc/labsynth/catalog.yaml")

	m := newTestManager(t)
	cfg := m.GetConfig()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/etc/labsynth/catalog.yaml", m.GetCatalogConfig().File)
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *Manager)
		wantErr string
	}{
		{
			name:    "bad port",
			mutate:  func(m *Manager) { m.config.Server.Port = 0 },
			wantErr: "invalid server port",
		},
		{
			name:    "bad rate limit",
			mutate:  func(m *Manager) { m.config.Server.RateLimitPerSec = 0 },
			wantErr: "invalid rate limit",
		},
		{
			name:    "missing database host",
			mutate:  func(m *Manager) { m.config.Database.Host = "" },
			wantErr: "database host is required",
		},
		{
			name:    "unknown review backend",
			mutate:  func(m *Manager) { m.config.Review.Backend = "csv" },
			wantErr: "invalid review backend",
		},
		{
			name: "postgres backend without URL",
			mutate: func(m *Manager) {
				m.config.Review.Backend = "postgres"
				m.config.Review.DatabaseURL = ""
			},
			wantErr: "database URL is required",
		},
		{
			name: "cache enabled without redis URL",
			mutate: func(m *Manager) {
				m.config.Cache.Enabled = true
				m.config.Cache.RedisURL = ""
			},
			wantErr: "redis URL is required",
		},
		{
			name:    "bad log level",
			mutate:  func(m *Manager) { m.config.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			tt.mutate(m)
			err := m.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConnectionString(t *testing.T) {
	m := newTestManager(t)
	m.config.Database.Host = "db.internal"
	m.config.Database.Port = 5433
	m.config.Database.Username = "labsynth"
	m.config.Database.Password = "secret"
	m.config.Database.Database = "labsynth"
	m.config.Database.SSLMode = "require"

	assert.Equal(t,
		"host=db.internal port=5433 user=labsynth password=secret dbname=labsynth sslmode=require",
		m.GetDatabaseConnectionString())
}
