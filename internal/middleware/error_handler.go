package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/heartlink/heartlink/internal/errors"
	"github.com/heartlink/heartlink/internal/telemetry"
)

// ErrorHandler converts errors attached to the gin context into a JSON
// response with the status from the error taxonomy, and recovers from
// panics with a 500.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger := telemetry.LogFromContext(c.Request.Context())
				logger.WithField("panic", recovered).Error("Recovered from panic in handler")

				appErr := apperrors.NewInternalError("An unexpected error occurred", nil).
					WithCorrelationID(telemetry.GetCorrelationID(c.Request.Context()))
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": appErr})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		appErr := apperrors.FromError(err).
			WithCorrelationID(telemetry.GetCorrelationID(c.Request.Context()))

		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}

		if status >= http.StatusInternalServerError {
			telemetry.LogFromContext(c.Request.Context()).WithError(err).Error("Request failed")
		}

		c.AbortWithStatusJSON(status, gin.H{"error": appErr})
	}
}
