// Package api exposes the analysis pipeline over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/catalog"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/middleware"
	"github.com/pharmaguard-server/internal/orchestrator"
)

// Server represents the HTTP server
type Server struct {
	cfg    *domain.Config
	logger *logrus.Logger
	router *gin.Engine
	server *http.Server

	orch    *orchestrator.Orchestrator
	gen     domain.Generator // nil when generation is disabled
	catalog *catalog.Catalog
	cache   domain.ExplanationStore
	reports domain.ReportStore // nil when persistence is disabled
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *domain.Config, logger *logrus.Logger, orch *orchestrator.Orchestrator, gen domain.Generator, cat *catalog.Catalog, cacheStore domain.ExplanationStore, reports domain.ReportStore) *Server {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(middleware.AuditLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CorrelationID())

	server := &Server{
		cfg:     cfg,
		logger:  logger,
		router:  router,
		orch:    orch,
		gen:     gen,
		catalog: cat,
		cache:   cacheStore,
		reports: reports,
	}

	server.setupRoutes()

	return server
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start starts the HTTP server and blocks until ctx is canceled, then
// shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Server
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
		s.logger.WithFields(logrus.Fields{"addr": addr}).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/analyses", s.handleSubmitAnalysis)
		v1.GET("/analyses/:id", s.handleGetAnalysis)
		v1.DELETE("/analyses/:id", s.handleCancelAnalysis)

		v1.GET("/drugs", s.handleListDrugs)
		v1.GET("/genes", s.handleListGenes)

		v1.GET("/patients/:id/reports", s.handleListReports)
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Correlation-ID")
		c.Header("Access-Control-Expose-Headers", "Content-Length")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
