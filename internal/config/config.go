package config

import (
	"fmt"
	"os"

	"github.com/heartlink/heartlink/internal/cache"
	"github.com/heartlink/heartlink/internal/database"
	"github.com/heartlink/heartlink/internal/telemetry"
)

// Config holds runtime settings loaded from env vars.
type Config struct {
	HTTPAddr    string
	Environment string
	Database    database.Config
	Redis       *cache.RedisConfig
	Log         *telemetry.LogConfig
}

// Load loads configuration from environment variables.
// Required variables: DB_PASSWORD (in production).
// Everything else has a development default.
func Load() Config {
	return Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		Environment: envOr("ENVIRONMENT", "development"),
		Database: database.Config{
			Host:     envOr("DB_HOST", "localhost"),
			Port:     envOr("DB_PORT", "5432"),
			User:     envOr("DB_USER", "postgres"),
			Password: envRequired("DB_PASSWORD"),
			DBName:   envOr("DB_NAME", "heartlink"),
			SSLMode:  envOr("DB_SSLMODE", "disable"),
		},
		Redis: cache.ConfigFromEnv(),
		Log: &telemetry.LogConfig{
			Level:      telemetry.LogLevel(envOr("LOG_LEVEL", "info")),
			Format:     envOr("LOG_FORMAT", "json"),
			Output:     envOr("LOG_OUTPUT", "stdout"),
			Rotation:   false,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		},
	}
}

// Validate checks that all required configuration is present.
func (c Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if !c.IsDevelopment() && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required outside development")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envRequired(key string) string {
	value := os.Getenv(key)
	if value == "" {
		// In development, allow empty but warn
		fmt.Printf("WARNING: %s is not set. This is required in production.\n", key)
	}
	return value
}
