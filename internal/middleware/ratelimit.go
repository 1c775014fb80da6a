package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// clientLimiter tracks a per-client token bucket and its last use, so idle
// entries can be evicted.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter enforces a per-client-IP request rate. Lab batches arrive in
// bursts, so the bucket allows short bursts above the sustained rate.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
}

// NewRateLimiter creates a rate limiter allowing rps sustained requests per
// second per client with the given burst.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	rl := &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
	go rl.evictLoop()
	return rl
}

func (rl *RateLimiter) limiterFor(clientIP string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cl, ok := rl.clients[clientIP]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[clientIP] = cl
	}
	cl.lastSeen = time.Now()
	return cl.limiter
}

// evictLoop drops limiters that have been idle for several minutes.
func (rl *RateLimiter) evictLoop() {
	for range time.Tick(time.Minute) {
		rl.mu.Lock()
		for ip, cl := range rl.clients {
			if time.Since(cl.lastSeen) > 5*time.Minute {
				delete(rl.clients, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// Middleware returns the gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.limiterFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":          "Rate limit exceeded",
				"correlation_id": c.GetString("correlation_id"),
			})
			return
		}
		c.Next()
	}
}
