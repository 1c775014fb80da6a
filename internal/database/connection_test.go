package database

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
)

func TestDatabaseConnection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}()

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	config := domain.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "testdb",
		Username:        "testuser",
		Password:        "testpass",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := NewConnection(ctx, config, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		t.Fatalf("Database health check failed: %v", err)
	}

	stats := db.Stats()
	if stats.TotalConns() == 0 {
		t.Error("Expected at least one connection in pool")
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	runner, err := NewMigrationRunner(connStr, logger)
	if err != nil {
		t.Fatalf("Failed to create migration runner: %v", err)
	}
	defer runner.Close()

	if err := runner.Up(ctx); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	version, dirty, err := runner.Version()
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if dirty {
		t.Error("Migration state should not be dirty")
	}
	if version == 0 {
		t.Error("Expected a non-zero migration version")
	}
}
