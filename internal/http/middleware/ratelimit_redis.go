package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// UseRedis sets the shared Redis client used by the rate limiters.
// A nil client makes them fall back to in-process limiting.
func UseRedis(client *redis.Client) {
	redisClient = client
}

// RedisRateLimit implements a fixed-window rate limiter using Redis INCR/EXPIRE,
// keyed by client IP. key format: rl:<window_seconds>:<identifier>
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	local := LocalRateLimit(maxRequests, window)
	return func(c *gin.Context) {
		if redisClient == nil {
			local(c)
			return
		}
		key := "rl:" + strconv.FormatInt(int64(window.Seconds()), 10) + ":" + c.ClientIP()
		fixedWindow(c, key, c.FullPath(), maxRequests, window)
	}
}

// UserRateLimit limits requests per authenticated user rather than per IP.
// Requires JWT to run first.
func UserRateLimit(scope string, maxRequests int, window time.Duration) gin.HandlerFunc {
	local := newLimiterSet(maxRequests, window)
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		uid := strconv.FormatInt(userID, 10)

		if redisClient == nil {
			if !local.allow(scope + ":" + uid) {
				RLBlocked.WithLabelValues(scope).Inc()
				c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
				return
			}
			RLRequests.WithLabelValues(scope).Inc()
			c.Next()
			return
		}

		key := "user_rl:" + scope + ":" + uid + ":" + strconv.FormatInt(int64(window.Seconds()), 10)
		fixedWindow(c, key, scope, maxRequests, window)
	}
}

func fixedWindow(c *gin.Context, key, endpoint string, maxRequests int, window time.Duration) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
	defer cancel()

	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		// fail-open
		c.Header("X-RateLimit-Error", "redis-error")
		c.Next()
		return
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-val), 10))

	if val > int64(maxRequests) {
		RLBlocked.WithLabelValues(endpoint).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(endpoint).Inc()
	c.Next()
}
