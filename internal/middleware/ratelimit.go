package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/heartlink/heartlink/internal/errors"
)

// RateLimiter is a simple token bucket.
type RateLimiter struct {
	tokens     int
	maxTokens  int
	lastRefill time.Time
	refillRate time.Duration
	mu         sync.Mutex
}

// NewRateLimiter creates a bucket holding maxTokens that refills one
// token per refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		lastRefill: time.Now(),
		refillRate: refillRate,
	}
}

// Allow checks if a request is allowed
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)

	if elapsed >= rl.refillRate {
		tokensToAdd := int(elapsed / rl.refillRate)
		if rl.tokens+tokensToAdd > rl.maxTokens {
			rl.tokens = rl.maxTokens
		} else {
			rl.tokens += tokensToAdd
		}
		rl.lastRefill = now
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	return false
}

// RateLimit limits requests per caller. Authenticated requests share a
// bucket per user id; anonymous ones fall back to the client IP.
func RateLimit(maxTokens int, refillRate time.Duration) gin.HandlerFunc {
	var mu sync.Mutex
	limiters := make(map[string]*RateLimiter)

	return func(c *gin.Context) {
		key := UserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		mu.Lock()
		limiter, ok := limiters[key]
		if !ok {
			limiter = NewRateLimiter(maxTokens, refillRate)
			limiters[key] = limiter
		}
		mu.Unlock()

		if !limiter.Allow() {
			appErr := apperrors.NewRateLimitError(maxTokens, refillRate.String())
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{"error": appErr})
			return
		}

		c.Next()
	}
}
