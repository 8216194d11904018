package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dual-finance/governance-proposals/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter holds per-client token buckets
type RateLimiter struct {
	// limiters stores rate limiters per wallet or IP
	limiters sync.Map
	rate     int
	burst    int
	// idleTTL is how long an unused limiter is kept
	idleTTL         time.Duration
	cleanupInterval time.Duration
}

type limiterEntry struct {
	limiter    *rate.Limiter
	mu         sync.Mutex
	lastAccess time.Time
}

func (e *limiterEntry) touch(now time.Time) {
	e.mu.Lock()
	e.lastAccess = now
	e.mu.Unlock()
}

func (e *limiterEntry) idleSince(now time.Time) time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now.Sub(e.lastAccess)
}

// NewRateLimiter creates a rate limiter allowing requestsPerSecond with the
// given burst. Idle limiters are swept until ctx is done.
func NewRateLimiter(ctx context.Context, requestsPerSecond, burst int) *RateLimiter {
	rl := &RateLimiter{
		rate:            requestsPerSecond,
		burst:           burst,
		idleTTL:         10 * time.Minute,
		cleanupInterval: 5 * time.Minute,
	}

	go rl.cleanup(ctx)

	return rl
}

func (rl *RateLimiter) cleanup(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			rl.sweep(now)
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) {
	rl.limiters.Range(func(key, value interface{}) bool {
		if entry, ok := value.(*limiterEntry); ok && entry.idleSince(now) > rl.idleTTL {
			rl.limiters.Delete(key)
		}
		return true
	})
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	now := time.Now()
	if val, ok := rl.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.touch(now)
		return entry.limiter
	}

	entry := &limiterEntry{
		limiter:    rate.NewLimiter(rate.Limit(rl.rate), rl.burst),
		lastAccess: now,
	}
	actual, _ := rl.limiters.LoadOrStore(key, entry)
	return actual.(*limiterEntry).limiter
}

// getClientIdentifier keys limits on the connected wallet, then the client IP
func getClientIdentifier(c *gin.Context) string {
	if wallet := c.GetHeader(WalletHeader); wallet != "" {
		return fmt.Sprintf("wallet:%s", wallet)
	}

	if forwardedFor := c.GetHeader("X-Forwarded-For"); forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		return fmt.Sprintf("ip:%s", strings.TrimSpace(first))
	}

	clientIP := c.ClientIP()
	if clientIP == "" {
		clientIP = "unknown"
	}
	return fmt.Sprintf("ip:%s", clientIP)
}

// Middleware returns a Gin middleware handler for rate limiting
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasSuffix(c.Request.URL.Path, "/health") {
			c.Next()
			return
		}

		clientID := getClientIdentifier(c)
		limiter := rl.getLimiter(clientID)

		if !limiter.Allow() {
			logger.L().Warn("Rate limit exceeded",
				zap.String("client_id", clientID),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)

			c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.rate))
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests. Please try again later.",
				"retry_after": 1,
			})
			return
		}

		remaining := int(limiter.Tokens())
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", rl.rate))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		c.Next()
	}
}
