package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/krbank/backoffice/internal/metrics"
)

const RequestIDHeader = "X-Request-ID"

// LoggingMiddleware tags each request with a request id and writes one
// structured access log line when it completes.
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("requestId", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"route", c.FullPath(),
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if employeeID, ok := GetEmployeeID(c); ok {
			attrs = append(attrs, "employee_id", employeeID)
		}

		switch {
		case status >= 500:
			logger.ErrorContext(c.Request.Context(), "request failed", attrs...)
		case status >= 400:
			logger.WarnContext(c.Request.Context(), "request rejected", attrs...)
		default:
			logger.InfoContext(c.Request.Context(), "request completed", attrs...)
		}
	}
}

// MetricsMiddleware records request counts and latency by matched route.
func MetricsMiddleware(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
