package middleware

import (
	"compress/gzip"
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	"github.com/gin-gonic/gin"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

// Compression encodes response bodies with brotli, or gzip for clients that
// do not accept br. Bodiless responses pass through untouched because the
// encoder is only created on the first write.
func (m *Middleware) Compression() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.config.Server.EnableCompression {
			c.Next()
			return
		}

		accept := c.GetHeader("Accept-Encoding")
		var encoding string
		switch {
		case acceptsEncoding(accept, encodingBrotli):
			encoding = encodingBrotli
		case acceptsEncoding(accept, encodingGzip):
			encoding = encodingGzip
		default:
			c.Next()
			return
		}

		c.Header("Vary", "Accept-Encoding")
		cw := &compressWriter{ResponseWriter: c.Writer, encoding: encoding}
		c.Writer = cw
		defer func() {
			if err := cw.Close(); err != nil {
				_ = c.Error(err)
			}
			c.Writer = cw.ResponseWriter
		}()

		c.Next()
	}
}

type compressWriter struct {
	gin.ResponseWriter
	encoding string
	encoder  io.WriteCloser
}

func (w *compressWriter) start() {
	if w.encoder != nil {
		return
	}
	h := w.ResponseWriter.Header()
	h.Set("Content-Encoding", w.encoding)
	h.Del("Content-Length")

	if w.encoding == encodingBrotli {
		w.encoder = brotli.NewWriterLevel(w.ResponseWriter, brotli.DefaultCompression)
		return
	}
	w.encoder = gzip.NewWriter(w.ResponseWriter)
}

func (w *compressWriter) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}
	if !bodyAllowed(w.Status()) {
		return w.ResponseWriter.Write(data)
	}
	w.start()
	return w.encoder.Write(data)
}

func (w *compressWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

func (w *compressWriter) Flush() {
	if f, ok := w.encoder.(interface{ Flush() error }); ok {
		_ = f.Flush()
	}
	w.ResponseWriter.Flush()
}

// Close flushes the encoder trailer, if one was started.
func (w *compressWriter) Close() error {
	if w.encoder == nil {
		return nil
	}
	return w.encoder.Close()
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
