// Package server runs the public JSON API over gin.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/deliveria/api/internal/infrastructure/config"
	"github.com/deliveria/api/internal/infrastructure/http/handlers"
	"github.com/deliveria/api/internal/infrastructure/http/middleware"
	"github.com/deliveria/api/internal/infrastructure/monitoring"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
)

// Server represents the HTTP server
type Server struct {
	config     *config.Config
	logger     *zap.Logger
	engine     *gin.Engine
	server     *http.Server
	middleware *middleware.Middleware
}

// NewServer builds the router and the http.Server. Nothing listens until
// Start is called.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	h *handlers.Handlers,
	metrics *monitoring.MetricsCollector,
) (*Server, error) {
	if cfg.App.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config:     cfg,
		logger:     logger.Named("server"),
		middleware: middleware.New(cfg, logger),
	}
	s.engine = s.setupRouter(h, metrics)

	s.server = &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           otelhttp.NewHandler(s.engine, cfg.App.Name),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		MaxHeaderBytes:    cfg.Server.MaxHeaderBytes,
	}
	if err := http2.ConfigureServer(s.server, &http2.Server{IdleTimeout: cfg.Server.IdleTimeout}); err != nil {
		return nil, fmt.Errorf("failed to configure HTTP/2: %w", err)
	}

	return s, nil
}

func (s *Server) setupRouter(h *handlers.Handlers, metrics *monitoring.MetricsCollector) *gin.Engine {
	m := s.middleware
	r := gin.New()
	r.HandleMethodNotAllowed = true
	// Only trust X-Forwarded-For from loopback proxies.
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.Use(
		m.Recovery(),
		m.RequestID(),
		m.Logger(),
		m.Tracing(),
	)
	if metrics != nil && s.config.Monitoring.MetricsEnabled {
		r.Use(metrics.HTTPMiddleware())
	}
	r.Use(
		m.Security(),
		m.CORS(),
		m.RateLimit(),
		m.Compression(),
		m.ErrorHandler(),
	)

	r.NoRoute(m.NotFound())
	r.NoMethod(m.MethodNotAllowed())

	h.RegisterRoutes(r)
	return r
}

// Handler exposes the full handler chain, otelhttp included.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start binds the listener and serves in the background. Bind errors are
// returned synchronously so startup fails fast.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}

	s.logger.Info("Starting HTTP server",
		zap.String("address", ln.Addr().String()),
		zap.String("environment", s.config.App.Environment),
	)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	defer s.middleware.Close()
	return s.server.Shutdown(ctx)
}
