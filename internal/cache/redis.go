package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"

	"github.com/heartlink/heartlink/internal/telemetry"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// Client is the subset of the redis client used by the service,
// extracted so tests can substitute a mock.
type Client interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Default TTLs in seconds.
var (
	DefaultTTL = 3600
	StatsTTL   = 60
	SessionTTL = 86400
)

// ErrCacheMiss is returned by Get/GetJSON when the key does not exist.
var ErrCacheMiss = redis.Nil

// RedisService provides JSON caching over a redis connection.
type RedisService struct {
	client Client
	config *RedisConfig
}

// NewRedisService connects to redis and verifies the connection.
func NewRedisService(config *RedisConfig) (*RedisService, error) {
	if config == nil {
		config = ConfigFromEnv()
	}

	ctx := telemetry.WithCorrelationID(context.Background(), telemetry.NewCorrelationID())
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"host":      config.Host,
		"port":      config.Port,
		"db":        config.DB,
		"operation": "redis_connection",
	})

	logger.Info("Establishing Redis connection")

	rdb := redis.NewClient(&redis.Options{
		Addr:       fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password:   config.Password,
		DB:         config.DB,
		PoolSize:   config.PoolSize,
		MaxRetries: 3,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Error("Failed to connect to Redis")
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connected")
	return &RedisService{client: rdb, config: config}, nil
}

// NewInstrumentedRedisService connects to redis with the OpenTelemetry
// tracing hook attached.
func NewInstrumentedRedisService(config *RedisConfig) (*RedisService, error) {
	if config == nil {
		config = ConfigFromEnv()
	}

	ctx := telemetry.WithCorrelationID(context.Background(), telemetry.NewCorrelationID())
	logger := telemetry.LogFromContext(ctx).WithFields(map[string]interface{}{
		"host":      config.Host,
		"port":      config.Port,
		"db":        config.DB,
		"operation": "instrumented_redis_connection",
	})

	logger.Info("Establishing instrumented Redis connection")

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
		PoolSize: config.PoolSize,
	})
	client.AddHook(redisotel.NewTracingHook())

	if err := client.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Error("Failed to connect to instrumented Redis")
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Instrumented Redis connected")
	return &RedisService{client: client, config: config}, nil
}

// ConfigFromEnv loads Redis configuration from environment variables.
func ConfigFromEnv() *RedisConfig {
	port, _ := strconv.Atoi(envOr("REDIS_PORT", "6379"))
	db, _ := strconv.Atoi(envOr("REDIS_DB", "0"))
	poolSize, _ := strconv.Atoi(envOr("REDIS_POOL_SIZE", "10"))

	return &RedisConfig{
		Host:     envOr("REDIS_HOST", "localhost"),
		Port:     port,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       db,
		PoolSize: poolSize,
	}
}

func envOr(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Set stores a raw value with TTL. A zero TTL falls back to DefaultTTL.
func (r *RedisService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if ttl == 0 {
		ttl = time.Duration(DefaultTTL) * time.Second
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Get retrieves a raw string value. Returns ErrCacheMiss when absent.
func (r *RedisService) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

// SetJSON marshals value and stores it with TTL.
func (r *RedisService) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return r.Set(ctx, key, data, ttl)
}

// GetJSON retrieves a value and unmarshals it into dest. Returns
// ErrCacheMiss when absent.
func (r *RedisService) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

// Delete removes a key. Deleting a missing key is not an error.
func (r *RedisService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// HealthCheck reports whether the connection answers PING.
func (r *RedisService) HealthCheck(ctx context.Context) bool {
	return r.client.Ping(ctx).Err() == nil
}

// Close releases the underlying connection.
func (r *RedisService) Close() error {
	return r.client.Close()
}
