package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/observability"
)

var quietPaths = map[string]bool{
	"/health": true,
	"/info":   true,
}

// RequestLogger returns middleware that logs every request with method,
// path, status code and duration. Health and info probes are not logged.
func RequestLogger(log *logger.Logger) Middleware {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if quietPaths[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := newStatusWriter(w)
			next.ServeHTTP(sw, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, sw.status,
				logger.FieldDuration, duration.Milliseconds(),
				"request_id", w.Header().Get(HeaderRequestID),
			)
			if duration > 500*time.Millisecond {
				fields["slow"] = true
			}
			logByStatus(log, fields, sw.status)
		})
	}
}

// Metrics returns a Gin middleware that records request counts and latency
// per route template, so /transcriptions/:id is one series.
func Metrics(m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordRequest(c.Request.Context(), c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}

// logByStatus logs request fields at a level chosen by the HTTP status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Debug("request completed", fields)
	}
}
