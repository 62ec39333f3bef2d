// Package middleware provides the gin middleware chain of the public API
// and the net/http middleware of the admin listener.
package middleware

import (
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/deliveria/api/internal/infrastructure/config"
	apperrors "github.com/deliveria/api/pkg/errors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// RequestIDHeader carries the correlation id in both directions.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDFrom returns the id assigned by RequestID, or "".
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Middleware provides all middleware functions
type Middleware struct {
	config *config.Config
	logger *zap.Logger

	mu       sync.Mutex
	limiters map[string]*clientLimiter
	stop     chan struct{}
	stopOnce sync.Once
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// New creates a new middleware instance. When rate limiting is enabled a
// background sweep evicts idle clients until Close is called.
func New(cfg *config.Config, logger *zap.Logger) *Middleware {
	m := &Middleware{
		config:   cfg,
		logger:   logger.Named("http"),
		limiters: make(map[string]*clientLimiter),
		stop:     make(chan struct{}),
	}
	if cfg.RateLimit.Enabled && cfg.RateLimit.CleanupInterval > 0 {
		go m.sweep(cfg.RateLimit.CleanupInterval)
	}
	return m
}

// Close stops the limiter sweep.
func (m *Middleware) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// RequestID reuses the caller's X-Request-ID or generates one.
func (m *Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(requestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}

// Logger provides structured logging for requests
func (m *Middleware) Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		statusCode := c.Writer.Status()

		fields := []zap.Field{
			zap.String("request_id", RequestIDFrom(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", statusCode),
			zap.Duration("latency", time.Since(start)),
			zap.String("user_agent", c.Request.UserAgent()),
		}

		switch {
		case statusCode >= 500:
			m.logger.Error("Server error", append(fields, zap.String("error", c.Errors.String()))...)
		case statusCode >= 400:
			m.logger.Warn("Client error", append(fields, zap.String("error", c.Errors.String()))...)
		default:
			m.logger.Info("Request completed", fields...)
		}
	}
}

// Recovery turns a panic into a 500 error envelope.
func (m *Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				m.logger.Error("Panic recovered",
					zap.String("request_id", RequestIDFrom(c)),
					zap.Any("error", rec),
					zap.String("stack", string(debug.Stack())),
				)

				appErr := apperrors.NewInternalError("")
				c.AbortWithStatusJSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, RequestIDFrom(c)))
			}
		}()

		c.Next()
	}
}

// CORS handles Cross-Origin Resource Sharing against the configured origins.
func (m *Middleware) CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && m.isOriginAllowed(origin) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Max-Age", "86400")
			c.Header("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func (m *Middleware) isOriginAllowed(origin string) bool {
	for _, allowed := range m.config.Server.CORSAllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// RateLimit applies a token bucket per client IP.
func (m *Middleware) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.RateLimit.Enabled {
			c.Next()
			return
		}

		if !m.limiterFor(c.ClientIP()).Allow() {
			retryAfter := int(1 / m.config.RateLimit.RequestsPerSecond)
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			appErr := apperrors.NewAppError(apperrors.CodeRateLimitExceeded, "Rate limit exceeded", "").
				WithMetadata("retry_after", retryAfter)
			c.AbortWithStatusJSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, RequestIDFrom(c)))
			return
		}

		c.Next()
	}
}

func (m *Middleware) limiterFor(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	cl, ok := m.limiters[ip]
	if !ok {
		cl = &clientLimiter{
			limiter: rate.NewLimiter(rate.Limit(m.config.RateLimit.RequestsPerSecond), m.config.RateLimit.Burst),
		}
		m.limiters[ip] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

func (m *Middleware) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for ip, cl := range m.limiters {
				if now.Sub(cl.lastSeen) > interval {
					delete(m.limiters, ip)
				}
			}
			m.mu.Unlock()
		}
	}
}

// Tracing names the server span started by otelhttp after the matched route
// and tags it with the request id and final status.
func (m *Middleware) Tracing() gin.HandlerFunc {
	return func(c *gin.Context) {
		span := trace.SpanFromContext(c.Request.Context())
		if !span.IsRecording() {
			c.Next()
			return
		}

		if route := c.FullPath(); route != "" {
			span.SetName(c.Request.Method + " " + route)
			span.SetAttributes(attribute.String("http.route", route))
		}
		span.SetAttributes(attribute.String("request.id", RequestIDFrom(c)))

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if len(c.Errors) > 0 {
			span.RecordError(c.Errors.Last())
		}
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

// Security adds security headers
func (m *Middleware) Security() gin.HandlerFunc {
	return func(c *gin.Context) {
		setSecurityHeaders(c.Writer.Header())
		c.Next()
	}
}

// ErrorHandler renders the last error attached with c.Error as the standard
// error envelope. Errors that are not AppErrors become INTERNAL_ERROR.
func (m *Middleware) ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperrors.Wrap(err, "")

		fields := []zap.Field{
			zap.String("request_id", RequestIDFrom(c)),
			zap.String("code", string(appErr.Code)),
			zap.String("message", appErr.Message),
			zap.String("details", appErr.Details),
		}
		if appErr.StatusCode() >= 500 {
			m.logger.Error("Request failed", append(fields, zap.Error(err))...)
		} else {
			m.logger.Debug("Request rejected", fields...)
		}

		c.JSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, RequestIDFrom(c)))
	}
}

// NotFound renders unknown routes with the standard envelope.
func (m *Middleware) NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		appErr := apperrors.NewNotFoundError("Route")
		c.JSON(appErr.StatusCode(), apperrors.ToErrorResponse(appErr, RequestIDFrom(c)))
	}
}

// MethodNotAllowed renders a known path called with the wrong verb.
func (m *Middleware) MethodNotAllowed() gin.HandlerFunc {
	return func(c *gin.Context) {
		appErr := apperrors.NewBadRequestError("Method not allowed")
		c.JSON(http.StatusMethodNotAllowed, apperrors.ToErrorResponse(appErr, RequestIDFrom(c)))
	}
}

func setSecurityHeaders(h http.Header) {
	h.Set("X-Content-Type-Options", "nosniff")
	h.Set("X-Frame-Options", "DENY")
	h.Set("X-XSS-Protection", "1; mode=block")
	h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	h.Set("Cache-Control", "no-store")
	h.Del("Server")
}

// acceptsEncoding reports whether the Accept-Encoding header lists enc with a
// non-zero quality.
func acceptsEncoding(header, enc string) bool {
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(name), enc) {
			continue
		}
		q := strings.TrimSpace(params)
		if v, ok := strings.CutPrefix(q, "q="); ok {
			if f, err := strconv.ParseFloat(v, 64); err == nil && f == 0 {
				return false
			}
		}
		return true
	}
	return false
}
