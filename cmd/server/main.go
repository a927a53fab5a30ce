package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/heartlink/heartlink/internal/cache"
	"github.com/heartlink/heartlink/internal/config"
	"github.com/heartlink/heartlink/internal/database"
	"github.com/heartlink/heartlink/internal/handlers"
	"github.com/heartlink/heartlink/internal/middleware"
	"github.com/heartlink/heartlink/internal/monitoring"
	"github.com/heartlink/heartlink/internal/services"
	"github.com/heartlink/heartlink/internal/telemetry"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := telemetry.InitGlobalLogger(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := telemetry.GetGlobalLogger()

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.InitializeOpenTelemetry(ctx, telemetry.LoadOTelConfigFromEnv())
	if err != nil {
		logger.WithError(err).Warn("OpenTelemetry initialization failed, continuing without tracing")
		shutdownTelemetry = func() {}
	}

	db, err := database.NewInstrumentedConnection(cfg.Database)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.WithError(err).Error("Failed to apply database schema")
		os.Exit(1)
	}

	redis, err := cache.NewInstrumentedRedisService(cfg.Redis)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to Redis")
		os.Exit(1)
	}
	defer redis.Close()

	userService := services.NewUserService(db)
	matchService := services.NewMatchService(db, userService)
	swipeService := services.NewSwipeService(db, userService, matchService, redis)
	feedService := services.NewFeedService(db, userService)
	friendService := services.NewFriendService(db, userService)
	messagingService := services.NewMessagingService(db, userService)
	sessions := cache.NewSessionStore(redis)

	health := monitoring.NewHealthChecker("heartlink")
	health.RegisterDatabaseCheck(db)
	health.RegisterRedisCheck(redis)

	var sessionResolver middleware.SessionResolver = sessions
	router := handlers.NewRouter(handlers.RouterConfig{
		ServiceName: "heartlink",
		Sessions:    sessionResolver,
		Health:      health,
		Swipes:      handlers.NewSwipeHandler(swipeService, feedService, matchService),
		Users:       handlers.NewUserHandler(userService),
		Friends:     handlers.NewFriendHandler(friendService),
		Messages:    handlers.NewMessageHandler(messagingService),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown failed")
	}
	shutdownTelemetry()

	logger.Info("Server stopped")
}
