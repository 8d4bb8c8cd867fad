package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"jobby-backend/internal/domain"
	"jobby-backend/pkg/logger"

	goredis "github.com/redis/go-redis/v9"
)

const profileKeyPrefix = "profile:candidate:"

// ProfileCache keeps serialized profiles in redis. A nil client turns every
// call into a miss so the service runs without redis.
type ProfileCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewProfileCache(client *goredis.Client, ttl time.Duration) *ProfileCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{client: client, ttl: ttl}
}

func (c *ProfileCache) Get(ctx context.Context, userID string) (*domain.CandidateProfile, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, profileKeyPrefix+userID).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			logger.Log.Warn("Profile cache read failed", "error", err)
		}
		return nil, false
	}
	var p domain.CandidateProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.Log.Warn("Profile cache entry corrupt", "error", err)
		return nil, false
	}
	return &p, true
}

func (c *ProfileCache) Set(ctx context.Context, profile *domain.CandidateProfile) {
	if c.client == nil || profile == nil {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, profileKeyPrefix+profile.UserID, raw, c.ttl).Err(); err != nil {
		logger.Log.Warn("Profile cache write failed", "error", err)
	}
}

func (c *ProfileCache) Invalidate(ctx context.Context, userID string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, profileKeyPrefix+userID).Err(); err != nil {
		logger.Log.Warn("Profile cache invalidation failed", "user_id", userID, "error", err)
	}
}
