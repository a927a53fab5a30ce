package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heartlink/heartlink/internal/telemetry"
)

// RequestLogging logs every request with its latency and status through
// the contextual logger, so the correlation id travels with each line.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger := telemetry.LogFromContext(c.Request.Context()).WithFields(map[string]interface{}{
			"method":      c.Request.Method,
			"path":        path,
			"status":      c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"client_ip":   c.ClientIP(),
		})

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("Request completed with server error")
		case c.Writer.Status() >= 400:
			logger.Warn("Request completed with client error")
		default:
			logger.Info("Request completed")
		}
	}
}
