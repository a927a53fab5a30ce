package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// redisContainer manages a throwaway Redis instance for integration tests.
type redisContainer struct {
	container testcontainers.Container
	host      string
	port      int
}

func startRedisContainer(ctx context.Context) (*redisContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, err
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, err
	}

	mappedPort, err := container.MappedPort(ctx, "6379")
	if err != nil {
		return nil, err
	}

	port, err := strconv.Atoi(mappedPort.Port())
	if err != nil {
		return nil, err
	}

	return &redisContainer{container: container, host: host, port: port}, nil
}

func (rc *redisContainer) stop(ctx context.Context) error {
	return rc.container.Terminate(ctx)
}

func (rc *redisContainer) config() *RedisConfig {
	return &RedisConfig{
		Host:     rc.host,
		Port:     rc.port,
		Password: "",
		DB:       0,
		PoolSize: 10,
	}
}

func TestRedisIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := startRedisContainer(ctx)
	require.NoError(t, err)
	defer container.stop(ctx)

	service, err := NewRedisService(container.config())
	require.NoError(t, err)
	defer service.Close()

	t.Run("Basic Set and Get", func(t *testing.T) {
		err := service.Set(ctx, "test:basic", "test_value", time.Minute)
		assert.NoError(t, err)

		retrieved, err := service.Get(ctx, "test:basic")
		assert.NoError(t, err)
		assert.Equal(t, "test_value", retrieved)
	})

	t.Run("JSON Round Trip", func(t *testing.T) {
		data := map[string]interface{}{
			"id":   123,
			"name": "Test User",
			"age":  25,
		}

		err := service.SetJSON(ctx, "test:json", data, time.Minute)
		assert.NoError(t, err)

		var retrieved map[string]interface{}
		err = service.GetJSON(ctx, "test:json", &retrieved)
		assert.NoError(t, err)
		assert.Equal(t, float64(123), retrieved["id"]) // JSON numbers decode as float64
		assert.Equal(t, "Test User", retrieved["name"])
	})

	t.Run("Cache Miss", func(t *testing.T) {
		_, err := service.Get(ctx, "test:nonexistent")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, service.Set(ctx, "test:delete", "value", time.Minute))
		require.NoError(t, service.Delete(ctx, "test:delete"))

		_, err := service.Get(ctx, "test:delete")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("TTL Expiry", func(t *testing.T) {
		require.NoError(t, service.Set(ctx, "test:ttl", "temporary", time.Second))

		value, err := service.Get(ctx, "test:ttl")
		assert.NoError(t, err)
		assert.Equal(t, "temporary", value)

		time.Sleep(2 * time.Second)

		_, err = service.Get(ctx, "test:ttl")
		assert.ErrorIs(t, err, ErrCacheMiss)
	})

	t.Run("Session Lifecycle", func(t *testing.T) {
		store := NewSessionStore(service)

		require.NoError(t, store.Store(ctx, "token-abc", "user-1", 0))

		userID, err := store.Resolve(ctx, "token-abc")
		assert.NoError(t, err)
		assert.Equal(t, "user-1", userID)

		require.NoError(t, store.Revoke(ctx, "token-abc"))

		_, err = store.Resolve(ctx, "token-abc")
		assert.Error(t, err)
	})

	t.Run("Health Check", func(t *testing.T) {
		assert.True(t, service.HealthCheck(ctx))
	})
}

func TestRedisConcurrency(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := startRedisContainer(ctx)
	require.NoError(t, err)
	defer container.stop(ctx)

	cfg := container.config()
	cfg.PoolSize = 20
	service, err := NewRedisService(cfg)
	require.NoError(t, err)
	defer service.Close()

	const numGoroutines = 50
	const numOperations = 100

	var wg sync.WaitGroup
	errorChan := make(chan error, numGoroutines*numOperations)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(goroutineID int) {
			defer wg.Done()

			for j := 0; j < numOperations; j++ {
				key := fmt.Sprintf("concurrent:g%d:op%d", goroutineID, j)
				value := fmt.Sprintf("value_%d_%d", goroutineID, j)

				if err := service.Set(ctx, key, value, time.Minute); err != nil {
					errorChan <- fmt.Errorf("set error for %s: %w", key, err)
					continue
				}

				retrieved, err := service.Get(ctx, key)
				if err != nil {
					errorChan <- fmt.Errorf("get error for %s: %w", key, err)
					continue
				}

				if retrieved != value {
					errorChan <- fmt.Errorf("value mismatch for %s: expected %s, got %s", key, value, retrieved)
				}
			}
		}(i)
	}

	wg.Wait()
	close(errorChan)

	var errs []error
	for err := range errorChan {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		t.Fatalf("Concurrent operations failed with %d errors. First error: %v", len(errs), errs[0])
	}
}

func TestRedisFailover(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	container, err := startRedisContainer(ctx)
	require.NoError(t, err)

	service, err := NewRedisService(container.config())
	require.NoError(t, err)
	defer service.Close()

	require.NoError(t, service.Set(ctx, "test:failover", "initial_value", time.Minute))

	require.NoError(t, container.stop(ctx))

	assert.Error(t, service.Set(ctx, "test:after", "value", time.Minute))
	_, err = service.Get(ctx, "test:failover")
	assert.Error(t, err)
	assert.False(t, service.HealthCheck(ctx))
}
