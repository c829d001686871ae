package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting for API requests
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rps int, burst int) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// getLimiter returns a rate limiter for a specific key
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = time.Now()

	return v.limiter
}

// evict drops limiters idle for longer than maxIdle
func (rl *RateLimiter) evict(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for key, v := range rl.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

// Cleanup periodically removes idle limiters until ctx is done
func (rl *RateLimiter) Cleanup(ctx context.Context, maxIdle time.Duration) {
	ticker := time.NewTicker(maxIdle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(maxIdle)
		}
	}
}

// RateLimit middleware limits requests per IP or user
func RateLimit(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try to get user ID first
		userID, exists := GetUserID(c)
		var key string

		if exists {
			key = fmt.Sprintf("user:%s", userID)
		} else {
			// Fall back to IP address
			key = fmt.Sprintf("ip:%s", c.ClientIP())
		}

		limiter := rl.getLimiter(key)
		if !limiter.Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// QuotaCounter counts note generations per user per day
type QuotaCounter interface {
	ConsumeDailyQuota(ctx context.Context, userID string, limit int64) (bool, int64, error)
}

// ConsumeQuota takes one unit of the caller's daily note quota and sets the
// quota headers. When the quota is spent it answers 429, aborts and returns
// false. Admins are exempt and a counter failure lets the request through.
func ConsumeQuota(c *gin.Context, counter QuotaCounter, limit int64, logger *logging.Logger) bool {
	user, exists := GetSessionUser(c)
	if !exists || limit <= 0 || user.Role == models.UserRoleAdmin {
		return true
	}

	allowed, count, err := counter.ConsumeDailyQuota(c.Request.Context(), user.ID, limit)
	if err != nil {
		if logger != nil {
			logger.WithUserID(user.ID).WithError(err).Warn("Quota check failed, allowing request")
		}
		return true
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-Quota-Limit", strconv.FormatInt(limit, 10))
	c.Header("X-Quota-Remaining", strconv.FormatInt(remaining, 10))

	if !allowed {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "Daily note quota exceeded. Please try again tomorrow.",
		})
		return false
	}
	return true
}
