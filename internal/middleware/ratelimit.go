package middleware

import (
	"net/http" // HTTP status codes
	"sync"     // Mutex for the limiter map
	"time"     // Window durations

	"github.com/gin-gonic/gin" // Gin web framework
	"golang.org/x/time/rate"   // Token bucket rate limiter
)

// RateLimitConfig defines the rate limiting parameters.
type RateLimitConfig struct {
	RequestsPerWindow int           // Requests allowed per window
	Window            time.Duration // Window duration
	Burst             int           // Temporary burst allowance
}

// Rate limit profiles
var (
	// StrictLimit protects auth and catalog-scan endpoints from brute force.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}
	// ModerateLimit covers authenticated write operations.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 60, Window: time.Minute, Burst: 60}
)

// ipLimiter tracks one token bucket per client IP.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	cfg      RateLimitConfig
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[ip]
	if !ok {
		// Tokens refill evenly across the window
		lim = rate.NewLimiter(rate.Limit(float64(l.cfg.RequestsPerWindow)/l.cfg.Window.Seconds()), l.cfg.Burst)
		l.limiters[ip] = lim
	}
	return lim
}

// RateLimit returns a per-IP rate limiting middleware for the given profile.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	l := &ipLimiter{limiters: make(map[string]*rate.Limiter), cfg: cfg}
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			// Over the limit, reject without touching the handler
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests", "code": "RATE_LIMITED"})
			return
		}
		c.Next()
	}
}
