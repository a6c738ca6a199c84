package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdle = 10 * time.Minute

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// limiterSet keeps one token bucket per key. Buckets refill at
// maxRequests per window with a burst of maxRequests.
type limiterSet struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	entries map[string]*limiterEntry
	swept   time.Time
}

func newLimiterSet(maxRequests int, window time.Duration) *limiterSet {
	if maxRequests < 1 {
		maxRequests = 1
	}
	return &limiterSet{
		every:   rate.Every(window / time.Duration(maxRequests)),
		burst:   maxRequests,
		entries: make(map[string]*limiterEntry),
		swept:   time.Now(),
	}
}

func (s *limiterSet) allow(key string) bool {
	now := time.Now()

	s.mu.Lock()
	if now.Sub(s.swept) > limiterIdle {
		for k, e := range s.entries {
			if now.Sub(e.seen) > limiterIdle {
				delete(s.entries, k)
			}
		}
		s.swept = now
	}
	e, ok := s.entries[key]
	if !ok {
		e = &limiterEntry{lim: rate.NewLimiter(s.every, s.burst)}
		s.entries[key] = e
	}
	e.seen = now
	s.mu.Unlock()

	return e.lim.AllowN(now, 1)
}

// LocalRateLimit limits clients per IP inside this process.
func LocalRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	set := newLimiterSet(maxRequests, window)
	return func(c *gin.Context) {
		if !set.allow(c.ClientIP()) {
			RLBlocked.WithLabelValues(c.FullPath()).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		RLRequests.WithLabelValues(c.FullPath()).Inc()
		c.Next()
	}
}
