// Package admin serves the operational endpoints (metrics and health probes)
// on a listener separate from the public API.
package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/deliveria/api/internal/infrastructure/config"
	"github.com/deliveria/api/internal/infrastructure/http/middleware"
	"github.com/deliveria/api/internal/infrastructure/monitoring"
	"github.com/deliveria/api/pkg/healthcheck"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server is the admin HTTP listener.
type Server struct {
	logger *zap.Logger
	router chi.Router
	server *http.Server
}

// NewServer wires /metrics and the /health probes onto a chi router.
func NewServer(cfg *config.Config, logger *zap.Logger, metrics *monitoring.MetricsCollector, health *healthcheck.HealthCheck) *Server {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AdminLogger(logger))
	r.Use(middleware.AdminSecurity())

	if metrics != nil && cfg.Monitoring.MetricsEnabled {
		r.Method(http.MethodGet, "/metrics", metrics.Handler())
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/", health.Handler())
		r.Get("/live", health.LivenessHandler())
		r.Get("/ready", health.ReadinessHandler())
	})

	return &Server{
		logger: logger.Named("admin"),
		router: r,
		server: &http.Server{
			Addr:              cfg.AdminAddr(),
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
	}
}

// Handler returns the admin router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the admin listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.logger.Info("Starting admin server", zap.String("address", ln.Addr().String()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Admin server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the admin listener.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down admin server")
	return s.server.Shutdown(ctx)
}
