package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// AdminLogger is the chi-compatible request logger of the admin listener.
// Successful probes and scrapes log at debug so they do not flood the output.
func AdminLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	logger = logger.Named("admin")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("latency", time.Since(start)),
			}
			if wrapped.statusCode >= 400 {
				logger.Warn("Admin request failed", fields...)
				return
			}
			logger.Debug("Admin request", fields...)
		})
	}
}

// AdminSecurity sets the same security headers the public API sends.
func AdminSecurity() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			setSecurityHeaders(w.Header())
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
