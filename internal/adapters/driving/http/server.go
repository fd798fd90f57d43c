package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/lectern/internal/core/ports/driving"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	handler    http.Handler
	logger     *slog.Logger

	shutdownTimeout time.Duration

	// Services
	libraryService driving.LibraryService
	summaryService driving.SummaryService
	jobService     driving.JobService // nil when no queue is configured
	adminService   driving.AdminService
	healthService  driving.HealthService
}

// Config holds server configuration
type Config struct {
	Host            string
	Port            int
	AllowedOrigins  []string
	RateLimitRPS    float64
	RateLimitBurst  int
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:            "0.0.0.0",
		Port:            10000,
		AllowedOrigins:  []string{"*"},
		RateLimitRPS:    10,
		RateLimitBurst:  20,
		ShutdownTimeout: 30 * time.Second,
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	libraryService driving.LibraryService,
	summaryService driving.SummaryService,
	jobService driving.JobService,
	adminService driving.AdminService,
	healthService driving.HealthService,
) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		router:          http.NewServeMux(),
		logger:          logger,
		shutdownTimeout: cfg.ShutdownTimeout,
		libraryService:  libraryService,
		summaryService:  summaryService,
		jobService:      jobService,
		adminService:    adminService,
		healthService:   healthService,
	}

	s.setupRoutes()

	var h http.Handler = s.router
	h = NewRateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst).Handler(h)
	h = NewCORSMiddleware(cfg.AllowedOrigins).Handler(h)
	h = NewLoggingMiddleware(logger).Handler(h)
	h = NewRecoveryMiddleware(logger).Handler(h)
	h = RequestIDMiddleware(h)
	s.handler = h

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute, // summaries can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	authMiddleware := NewAuthMiddleware(s.adminService)

	// Health endpoints
	s.router.HandleFunc("GET /api/health", s.handleHealth)
	s.router.HandleFunc("GET /api/health/detailed", s.handleDetailedHealth)

	// Books
	s.router.HandleFunc("POST /api/search", s.handleSearch)
	s.router.HandleFunc("GET /api/books/{id}", s.handleGetBook)
	s.router.HandleFunc("POST /api/books/{id}/summary", s.handleSummarize)
	s.router.HandleFunc("GET /api/summaries/{id}", s.handleGetSummary)

	// Async summary jobs
	s.router.HandleFunc("POST /api/books/{id}/summary/jobs", s.handleSubmitJob)
	s.router.HandleFunc("GET /api/jobs/{id}", s.handleGetJob)

	// Admin
	s.router.HandleFunc("POST /api/admin/token", s.handleIssueToken)
	s.router.Handle("DELETE /api/cache/clear",
		authMiddleware.RequireAdmin(http.HandlerFunc(s.handleClearCache)))
	s.router.Handle("PUT /api/admin/backend",
		authMiddleware.RequireAdmin(http.HandlerFunc(s.handleSwitchBackend)))

	// API documentation
	s.router.HandleFunc("GET /swagger/doc.json", s.handleSwaggerDoc)
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
