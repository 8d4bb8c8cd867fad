package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"jobby-backend/internal/delivery/http/response"
	"jobby-backend/internal/domain"
	"jobby-backend/pkg/audit"
	"jobby-backend/pkg/metrics"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	Scope  string
	Limit  int
	Window time.Duration
	// KeyFunc picks the bucket; defaults to the session user, then client IP
	KeyFunc func(*gin.Context) string
}

// Fixed window counter, created with a TTL on first hit.
// Returns: [current_count, ttl_remaining]
var fixedWindow = goredis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`)

// ProfileWriteRateLimit bounds profile writes per user.
func ProfileWriteRateLimit() RateLimitConfig {
	return RateLimitConfig{Scope: "profile_write", Limit: 30, Window: time.Minute}
}

// RateLimiter counts requests in redis when available and in memory
// otherwise. It fails open on redis errors.
type RateLimiter struct {
	client *goredis.Client
	audit  *audit.Logger

	mu      sync.Mutex
	entries map[string]*window
}

type window struct {
	count   int
	resetAt time.Time
}

func NewRateLimiter(client *goredis.Client, auditLog *audit.Logger) *RateLimiter {
	return &RateLimiter{client: client, audit: auditLog, entries: make(map[string]*window)}
}

func (l *RateLimiter) Handler(config RateLimitConfig) gin.HandlerFunc {
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string {
			if id := c.GetString(string(domain.KeyUserID)); id != "" {
				return "user:" + id
			}
			return "ip:" + c.ClientIP()
		}
	}

	return func(c *gin.Context) {
		key := "rl:" + config.Scope + ":" + keyFunc(c)
		count, resetAt := l.hit(c.Request.Context(), key, config)

		remaining := config.Limit - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > config.Limit {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			metrics.RateLimited.WithLabelValues(config.Scope).Inc()
			l.audit.Record(c.Request.Context(), audit.Entry{
				Action:  audit.ActionRateLimited,
				UserID:  c.GetString(string(domain.KeyUserID)),
				IP:      c.ClientIP(),
				Details: map[string]interface{}{"scope": config.Scope, "path": c.FullPath()},
			})
			response.Error(c, http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func (l *RateLimiter) hit(ctx context.Context, key string, config RateLimitConfig) (int, time.Time) {
	if l.client != nil {
		count, resetAt, err := l.hitRedis(ctx, key, config)
		if err == nil {
			return count, resetAt
		}
	}
	return l.hitMemory(key, config, time.Now())
}

func (l *RateLimiter) hitRedis(ctx context.Context, key string, config RateLimitConfig) (int, time.Time, error) {
	res, err := fixedWindow.Run(ctx, l.client, []string{key}, int(config.Window.Seconds())).Int64Slice()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}
	if len(res) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	return int(res[0]), time.Now().Add(time.Duration(res[1]) * time.Second), nil
}

func (l *RateLimiter) hitMemory(key string, config RateLimitConfig, now time.Time) (int, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.entries[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(config.Window)}
		l.entries[key] = w
		l.sweep(now)
	}
	w.count++
	return w.count, w.resetAt
}

// sweep drops expired windows; called with mu held whenever a window opens.
func (l *RateLimiter) sweep(now time.Time) {
	for k, w := range l.entries {
		if now.After(w.resetAt) {
			delete(l.entries, k)
		}
	}
}
