package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter tracks one client's token bucket and its eviction deadline.
type clientLimiter struct {
	limiter *rate.Limiter
	expires time.Time
}

// RateLimit applies a per-IP token bucket. Idle buckets are evicted after
// five minutes.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	var (
		mu       sync.Mutex
		limiters = map[string]*clientLimiter{}
	)

	get := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		now := time.Now()
		for key, cl := range limiters {
			if now.After(cl.expires) {
				delete(limiters, key)
			}
		}

		cl, ok := limiters[ip]
		if !ok {
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			limiters[ip] = cl
		}
		cl.expires = now.Add(5 * time.Minute)
		return cl.limiter
	}

	return func(c *gin.Context) {
		if !get(c.ClientIP()).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "rate limit exceeded",
				"timestamp": time.Now().UTC(),
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
