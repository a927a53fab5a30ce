package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/heartlink/heartlink/internal/middleware"
	"github.com/heartlink/heartlink/internal/monitoring"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	ServiceName string
	Sessions    middleware.SessionResolver
	Health      *monitoring.HealthChecker
	Swipes      *SwipeHandler
	Users       *UserHandler
	Friends     *FriendHandler
	Messages    *MessageHandler
}

// NewRouter builds the gin engine with the full middleware chain and
// every route. Health endpoints stay outside authentication.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(
		otelgin.Middleware(cfg.ServiceName),
		middleware.CorrelationID(),
		middleware.RequestLogging(),
		middleware.ErrorHandler(),
	)

	router.GET("/health", cfg.Health.HealthHandler)
	router.GET("/ready", cfg.Health.ReadyHandler)

	api := router.Group("/api")
	api.Use(
		middleware.RequireSession(cfg.Sessions),
		middleware.RateLimit(60, time.Second),
	)

	swipe := api.Group("/swipe")
	{
		swipe.POST("/swipe", cfg.Swipes.Swipe)
		swipe.GET("/candidates", cfg.Swipes.Candidates)
		swipe.GET("/matches", cfg.Swipes.Matches)
		swipe.GET("/matches/detailed", cfg.Swipes.DetailedMatches)
		swipe.GET("/ranked", cfg.Swipes.Ranked)
		swipe.GET("/stats", cfg.Swipes.Stats)
		swipe.GET("/received", cfg.Swipes.Received)
		swipe.GET("/liked", cfg.Swipes.Liked)
	}

	users := api.Group("/users")
	{
		users.GET("/me", cfg.Users.Me)
		users.PUT("/me", cfg.Users.UpdateMe)
		users.GET("/:id/compatibility", cfg.Users.Compatibility)
	}

	friends := api.Group("/friends")
	{
		friends.POST("/requests", cfg.Friends.SendRequest)
		friends.GET("/requests", cfg.Friends.ListRequests)
		friends.POST("/requests/:id/respond", cfg.Friends.Respond)
		friends.GET("", cfg.Friends.Friends)
	}

	messages := api.Group("/messages")
	{
		messages.GET("/:userID", cfg.Messages.Conversation)
		messages.POST("/:userID", cfg.Messages.Send)
	}

	return router
}
