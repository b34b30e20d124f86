package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/electionwatch/atlas-backend/internal/dto"
	"github.com/electionwatch/atlas-backend/pkg/logger"
)

// ChoroplethCache is a read-through Redis cache for pre-joined choropleth
// responses. A nil client disables caching; every failure degrades to a
// miss rather than an error.
type ChoroplethCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewChoroplethCache(rc *redis.Client, ttl time.Duration) *ChoroplethCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ChoroplethCache{rc: rc, ttl: ttl}
}

func (c *ChoroplethCache) Get(ctx context.Context, key string) (*dto.ChoroplethResult, bool) {
	if c.rc == nil {
		return nil, false
	}
	raw, err := c.rc.Get(ctx, key).Result()
	if err != nil || raw == "" {
		return nil, false
	}
	var out dto.ChoroplethResult
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		logger.FromContext(ctx).Warn("discarding undecodable cache entry", "key", key, "error", err)
		return nil, false
	}
	return &out, true
}

func (c *ChoroplethCache) Set(ctx context.Context, key string, result *dto.ChoroplethResult) {
	if c.rc == nil || result == nil {
		return
	}
	b, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.rc.Set(ctx, key, string(b), c.ttl).Err(); err != nil {
		logger.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
}
