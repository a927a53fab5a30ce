package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/heartlink/heartlink/internal/telemetry"
)

const correlationHeader = "X-Correlation-ID"

// CorrelationID attaches a correlation id to every request. An id
// supplied by the caller is kept so traces join across services.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(correlationHeader)
		if correlationID == "" {
			correlationID = telemetry.NewCorrelationID()
		}

		ctx := telemetry.WithCorrelationID(c.Request.Context(), correlationID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(correlationHeader, correlationID)

		c.Next()
	}
}
