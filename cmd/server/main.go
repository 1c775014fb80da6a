package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/api"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/cache"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/catalog"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/config"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/database"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/repository"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/review"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/service"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	cat, err := catalog.Load(cfg.Catalog, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load analyte catalog")
	}

	synthesizer, err := service.NewSynthesizerService(logger, cat)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build synthesis pipeline")
	}

	deps := api.Deps{
		Synthesizer: synthesizer,
		Catalog:     cat,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence is optional: the synthesize endpoint works without it, so a
	// missing database degrades to stateless operation instead of failing boot.
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := database.NewConnection(connectCtx, cfg.Database, logger)
	connectCancel()
	if err != nil {
		logger.WithError(err).Warn("Database unavailable, summary persistence disabled")
	} else {
		defer db.Close()
		if err := runMigrations(cfg.Database, logger); err != nil {
			logger.WithError(err).Fatal("Database migrations failed")
		}
		deps.Repository = repository.NewSummaryRepository(db.Pool, logger)
	}

	if cfg.Cache.Enabled {
		summaryCache, err := cache.New(cfg.Cache)
		if err != nil {
			logger.WithError(err).Warn("Redis unavailable, summary cache disabled")
		} else {
			defer summaryCache.Close()
			deps.Cache = summaryCache
		}
	}

	reviews, err := review.Open(cfg.Review)
	if err != nil {
		logger.WithError(err).Warn("Review store unavailable, review endpoints disabled")
	} else {
		defer reviews.Close()
		deps.Reviews = reviews
	}

	server := api.NewServer(configManager, logger, deps)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down")
		cancel()
	}()

	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Starting lab synthesis server")

	if err := server.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Server failed")
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

func runMigrations(cfg domain.DatabaseConfig, logger *logrus.Logger) error {
	databaseURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(cfg.Username), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode)

	runner, err := database.NewMigrationRunner(databaseURL, logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.Up(context.Background())
}
