package redisstore

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Lua script for sliding window rate limiting
// KEYS[1] = rate limit key
// ARGV[1] = max count allowed
// ARGV[2] = window size in seconds
// ARGV[3] = current timestamp
// ARGV[4] = unique member
// Returns: 1 if allowed, 0 if rate limited
var slidingWindow = goredis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, 0, now - window)

if redis.call('ZCARD', key) >= limit then
    return 0
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('EXPIRE', key, window)
return 1
`)

// UploadLimiter bounds image uploads per IP per minute and per user per day.
type UploadLimiter struct {
	client       *goredis.Client
	maxPerMinute int
	maxPerDay    int
	now          func() time.Time
}

func NewUploadLimiter(client *goredis.Client, perMin, perDay int) *UploadLimiter {
	if perMin <= 0 {
		perMin = 10
	}
	if perDay <= 0 {
		perDay = 50
	}
	return &UploadLimiter{client: client, maxPerMinute: perMin, maxPerDay: perDay, now: time.Now}
}

// AllowUpload returns (allowed, retryAfterSeconds, error). Without redis every
// upload is allowed; a failing redis denies.
func (l *UploadLimiter) AllowUpload(ctx context.Context, ip, userID string) (bool, int, error) {
	if l.client == nil {
		return true, 0, nil
	}

	now := l.now()
	member := fmt.Sprintf("%d-%s", now.UnixNano(), userID)

	allowed, err := l.check(ctx, "ratelimit:upload:ip:"+ip, l.maxPerMinute, 60, now, member)
	if err != nil {
		return false, 60, fmt.Errorf("rate limit check failed: %w", err)
	}
	if !allowed {
		return false, 60, nil
	}

	if userID != "" {
		allowed, err = l.check(ctx, "ratelimit:upload:user:"+userID, l.maxPerDay, 86400, now, member)
		if err != nil {
			return false, 3600, fmt.Errorf("rate limit check failed: %w", err)
		}
		if !allowed {
			return false, 3600, nil
		}
	}
	return true, 0, nil
}

func (l *UploadLimiter) check(ctx context.Context, key string, limit, window int, now time.Time, member string) (bool, error) {
	res, err := slidingWindow.Run(ctx, l.client, []string{key}, limit, window, now.Unix(), member).Int64()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
