package monitoring

import (
	"context"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heartlink/heartlink/internal/cache"
	"github.com/heartlink/heartlink/internal/database"
)

// HealthStatus represents the overall health status
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status      HealthStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	Latency     int64        `json:"latency_ms"`
	LastChecked time.Time    `json:"last_checked"`
}

// HealthResponse is the full health check payload.
type HealthResponse struct {
	Status     HealthStatus               `json:"status"`
	Service    string                     `json:"service"`
	Timestamp  time.Time                  `json:"timestamp"`
	UptimeSecs int64                      `json:"uptime_seconds"`
	Components map[string]ComponentHealth `json:"components"`
	Goroutines int                        `json:"goroutines"`
}

// HealthChecker runs component probes on demand.
type HealthChecker struct {
	mu         sync.RWMutex
	startTime  time.Time
	service    string
	checkFuncs map[string]func(ctx context.Context) ComponentHealth
}

func NewHealthChecker(service string) *HealthChecker {
	return &HealthChecker{
		startTime:  time.Now(),
		service:    service,
		checkFuncs: make(map[string]func(ctx context.Context) ComponentHealth),
	}
}

// RegisterCheck adds a named component probe.
func (hc *HealthChecker) RegisterCheck(name string, check func(ctx context.Context) ComponentHealth) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checkFuncs[name] = check
}

// RegisterDatabaseCheck probes the postgres connection.
func (hc *HealthChecker) RegisterDatabaseCheck(db *database.DB) {
	hc.RegisterCheck("database", func(ctx context.Context) ComponentHealth {
		start := time.Now()
		err := db.Health()
		health := ComponentHealth{
			Status:      HealthStatusHealthy,
			Latency:     time.Since(start).Milliseconds(),
			LastChecked: time.Now(),
		}
		if err != nil {
			health.Status = HealthStatusUnhealthy
			health.Message = err.Error()
		}
		return health
	})
}

// RegisterRedisCheck probes the redis connection.
func (hc *HealthChecker) RegisterRedisCheck(redis *cache.RedisService) {
	hc.RegisterCheck("redis", func(ctx context.Context) ComponentHealth {
		start := time.Now()
		ok := redis.HealthCheck(ctx)
		health := ComponentHealth{
			Status:      HealthStatusHealthy,
			Latency:     time.Since(start).Milliseconds(),
			LastChecked: time.Now(),
		}
		if !ok {
			health.Status = HealthStatusUnhealthy
			health.Message = "redis did not answer PING"
		}
		return health
	})
}

// Check runs all registered probes and folds them into one status.
// Any unhealthy component makes the whole service unhealthy; redis
// alone degrades it, since the core works uncached.
func (hc *HealthChecker) Check(ctx context.Context) HealthResponse {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	components := make(map[string]ComponentHealth, len(hc.checkFuncs))
	status := HealthStatusHealthy
	for name, check := range hc.checkFuncs {
		health := check(ctx)
		components[name] = health
		if health.Status == HealthStatusUnhealthy {
			if name == "redis" && status == HealthStatusHealthy {
				status = HealthStatusDegraded
			} else {
				status = HealthStatusUnhealthy
			}
		}
	}

	return HealthResponse{
		Status:     status,
		Service:    hc.service,
		Timestamp:  time.Now(),
		UptimeSecs: int64(time.Since(hc.startTime).Seconds()),
		Components: components,
		Goroutines: runtime.NumGoroutine(),
	}
}

// HealthHandler serves GET /health.
func (hc *HealthChecker) HealthHandler(c *gin.Context) {
	response := hc.Check(c.Request.Context())

	status := http.StatusOK
	if response.Status == HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}

// ReadyHandler serves GET /ready: a cheap liveness answer for the
// load balancer, no component probes.
func (hc *HealthChecker) ReadyHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready", "service": hc.service})
}
