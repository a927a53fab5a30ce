package monitoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func staticCheck(status HealthStatus) func(ctx context.Context) ComponentHealth {
	return func(ctx context.Context) ComponentHealth {
		return ComponentHealth{Status: status, LastChecked: time.Now()}
	}
}

func TestHealthChecker_AllHealthy(t *testing.T) {
	hc := NewHealthChecker("heartlink")
	hc.RegisterCheck("database", staticCheck(HealthStatusHealthy))
	hc.RegisterCheck("redis", staticCheck(HealthStatusHealthy))

	response := hc.Check(context.Background())

	assert.Equal(t, HealthStatusHealthy, response.Status)
	assert.Equal(t, "heartlink", response.Service)
	assert.Len(t, response.Components, 2)
}

func TestHealthChecker_RedisDownDegrades(t *testing.T) {
	hc := NewHealthChecker("heartlink")
	hc.RegisterCheck("database", staticCheck(HealthStatusHealthy))
	hc.RegisterCheck("redis", staticCheck(HealthStatusUnhealthy))

	response := hc.Check(context.Background())

	assert.Equal(t, HealthStatusDegraded, response.Status)
}

func TestHealthChecker_DatabaseDownIsUnhealthy(t *testing.T) {
	hc := NewHealthChecker("heartlink")
	hc.RegisterCheck("database", staticCheck(HealthStatusUnhealthy))
	hc.RegisterCheck("redis", staticCheck(HealthStatusHealthy))

	response := hc.Check(context.Background())

	assert.Equal(t, HealthStatusUnhealthy, response.Status)
}

func TestHealthHandler(t *testing.T) {
	hc := NewHealthChecker("heartlink")
	hc.RegisterCheck("database", staticCheck(HealthStatusHealthy))

	router := gin.New()
	router.GET("/health", hc.HealthHandler)
	router.GET("/ready", hc.ReadyHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, HealthStatusHealthy, response.Status)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	hc := NewHealthChecker("heartlink")
	hc.RegisterCheck("database", staticCheck(HealthStatusUnhealthy))

	router := gin.New()
	router.GET("/health", hc.HealthHandler)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
