package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/heartlink/heartlink/internal/errors"
)

// UserIDKey is the gin context key the resolved user id is stored under.
const UserIDKey = "user_id"

// SessionResolver resolves a bearer token to a user id.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, error)
}

// RequireSession authenticates requests with an Authorization bearer
// token resolved through the session store. Unauthenticated requests
// get a 401 and never reach the handler.
func RequireSession(sessions SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortWithError(c, apperrors.NewAuthenticationError("Missing bearer token"))
			return
		}

		userID, err := sessions.Resolve(c.Request.Context(), token)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the authenticated user id set by RequireSession.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

func abortWithError(c *gin.Context, err error) {
	appErr := apperrors.FromError(err)
	if appErr.HTTPStatus == 0 {
		appErr.HTTPStatus = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{"error": appErr})
}
