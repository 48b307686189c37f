// Package http exposes the public query API and the management API.
// The query surface is gated by per-project API keys and rate limits;
// the management surface by short-lived admin session tokens.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docbase-labs/docbase-core/internal/core/ports/driven"
	"github.com/docbase-labs/docbase-core/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	queryService  driving.QueryService
	sourceService driving.SourceService
	apiKeyService driving.APIKeyService
	adminAuth     driving.AdminAuthService

	// Infrastructure
	taskQueue driven.TaskQueue
	limiter   driven.RateLimiter
	db        Pinger // PostgreSQL health check
	redis     Pinger // Redis health check (optional)
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:    "0.0.0.0",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	queryService driving.QueryService,
	sourceService driving.SourceService,
	apiKeyService driving.APIKeyService,
	adminAuth driving.AdminAuthService,
	taskQueue driven.TaskQueue,
	limiter driven.RateLimiter,
	db Pinger,
	redis Pinger, // can be nil
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		router:        http.NewServeMux(),
		version:       cfg.Version,
		logger:        logger,
		queryService:  queryService,
		sourceService: sourceService,
		apiKeyService: apiKeyService,
		adminAuth:     adminAuth,
		taskQueue:     taskQueue,
		limiter:       limiter,
		db:            db,
		redis:         redis,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      NewLoggingMiddleware(logger).Handler(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	keyAuth := NewAPIKeyMiddleware(s.apiKeyService)
	rateLimit := NewRateLimitMiddleware(s.limiter)
	adminAuth := NewAdminMiddleware(s.adminAuth)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Public query endpoint (API key + per-project rate limit)
	s.router.Handle("POST /api/v1/query",
		keyAuth.Authenticate(
			rateLimit.Limit(http.HandlerFunc(s.handleQuery))))

	// Management login (public)
	s.router.HandleFunc("POST /api/v1/admin/login", s.handleAdminLogin)

	// Source endpoints (admin-only)
	s.router.Handle("POST /api/v1/sources",
		adminAuth.Authenticate(http.HandlerFunc(s.handleCreateSource)))
	s.router.Handle("GET /api/v1/sources",
		adminAuth.Authenticate(http.HandlerFunc(s.handleListSources)))
	s.router.Handle("GET /api/v1/sources/{id}",
		adminAuth.Authenticate(http.HandlerFunc(s.handleGetSource)))
	s.router.Handle("DELETE /api/v1/sources/{id}",
		adminAuth.Authenticate(http.HandlerFunc(s.handleDeleteSource)))
	s.router.Handle("POST /api/v1/sources/{id}/process",
		adminAuth.Authenticate(http.HandlerFunc(s.handleProcessSource)))
	s.router.Handle("POST /api/v1/sources/{id}/retrain",
		adminAuth.Authenticate(http.HandlerFunc(s.handleRetrainSource)))

	// API key endpoints (admin-only)
	s.router.Handle("POST /api/v1/projects/{id}/keys",
		adminAuth.Authenticate(http.HandlerFunc(s.handleGenerateKey)))
	s.router.Handle("GET /api/v1/projects/{id}/keys",
		adminAuth.Authenticate(http.HandlerFunc(s.handleListKeys)))
	s.router.Handle("DELETE /api/v1/keys/{id}",
		adminAuth.Authenticate(http.HandlerFunc(s.handleRevokeKey)))

	// Queue introspection (admin-only)
	s.router.Handle("GET /api/v1/admin/queue/stats",
		adminAuth.Authenticate(http.HandlerFunc(s.handleQueueStats)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
