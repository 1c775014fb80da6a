// Package api exposes the lab synthesis engine over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/cache"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/domain"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/middleware"
	"github.com/loponly/ai-longitudinal-lab-synthesizer/internal/review"
)

// Deps carries the server's collaborators. Synthesizer and Catalog are
// required; the rest are optional and their endpoints degrade gracefully
// when absent.
type Deps struct {
	Synthesizer domain.Synthesizer
	Catalog     domain.Catalog
	Repository  domain.SummaryRepository
	Cache       *cache.SummaryCache
	Reviews     review.Store
}

// Server represents the HTTP server.
type Server struct {
	configManager domain.ConfigManager
	logger        *logrus.Logger
	deps          Deps
	router        *gin.Engine
	server        *http.Server
}

// NewServer creates a new HTTP server instance.
func NewServer(configManager domain.ConfigManager, logger *logrus.Logger, deps Deps) *Server {
	cfg := configManager.GetConfig()

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationID())
	router.Use(middleware.AuditLogger())
	router.Use(middleware.SecurityHeaders())

	serverCfg := configManager.GetServerConfig()
	if serverCfg.WriteTimeout > 0 {
		router.Use(middleware.RequestTimeout(serverCfg.WriteTimeout))
	}
	limiter := middleware.NewRateLimiter(serverCfg.RateLimitPerSec, serverCfg.RateLimitBurst)
	router.Use(limiter.Middleware())

	server := &Server{
		configManager: configManager,
		logger:        logger,
		deps:          deps,
		router:        router,
	}

	server.setupRoutes()

	return server
}

// Router exposes the configured handler, primarily for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.configManager.GetServerConfig()
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/synthesize", s.handleSynthesize)
		v1.GET("/summaries/:id", s.handleGetSummary)
		v1.GET("/patients/:id/summaries", s.handleListPatientSummaries)
		v1.GET("/catalog/analytes", s.handleListAnalytes)
		v1.POST("/reviews", s.handleSaveReview)
		v1.GET("/reviews", s.handleListReviews)
	}
}
