package middleware

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter counts requests per key in fixed windows.
type RateLimiter struct {
	mu        sync.Mutex
	tokens    map[string]int
	lastReset time.Time
	rate      int           // requests per window
	window    time.Duration // time window
	now       func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:    make(map[string]int),
		lastReset: time.Now(),
		rate:      rate,
		window:    window,
		now:       time.Now,
	}
}

// Allow records a request for key and reports whether it is within the limit.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.now().Sub(l.lastReset) > l.window {
		l.tokens = make(map[string]int)
		l.lastReset = l.now()
	}

	count := l.tokens[key]
	if count >= l.rate {
		return false
	}
	l.tokens[key] = count + 1
	return true
}

// RateLimit middleware limits requests per IP
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	return RateLimitBy(rate, window, func(c *gin.Context) string {
		return c.ClientIP()
	})
}

// RateLimitBy limits requests per key. Exports are limited per user so one
// account cannot queue renders from many addresses.
func RateLimitBy(rate int, window time.Duration, key func(c *gin.Context) string) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		k := key(c)
		if limiter.Allow(k) {
			c.Next()
			return
		}

		slog.Warn("rate limit exceeded",
			"key", k,
			"client_ip", c.ClientIP(),
			"request_id", GetRequestID(c),
		)

		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "Rate limit exceeded. Please try again later.",
		})
	}
}

// UserKey keys rate limits by authenticated user, falling back to client IP.
func UserKey(c *gin.Context) string {
	if id := GetUserID(c); id != "" {
		return "user:" + id
	}
	return "ip:" + c.ClientIP()
}
