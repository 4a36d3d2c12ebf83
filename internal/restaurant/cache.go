package restaurant

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"foodhub-be/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cache holds restaurant detail pages. Implementations swallow their own
// errors; a broken cache only costs a database read.
type Cache interface {
	Get(ctx context.Context, id uuid.UUID) (*Restaurant, bool)
	Set(ctx context.Context, r *Restaurant)
	Invalidate(ctx context.Context, id uuid.UUID)
}

type redisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) Cache {
	return &redisCache{rdb: rdb, ttl: ttl}
}

func cacheKey(id uuid.UUID) string {
	return "restaurant:" + id.String()
}

func (c *redisCache) Get(ctx context.Context, id uuid.UUID) (*Restaurant, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.FromCtx(ctx).Warn("cache: get failed", zap.String("restaurant_id", id.String()), zap.Error(err))
		}
		return nil, false
	}

	var r Restaurant
	if err := json.Unmarshal(raw, &r); err != nil {
		logger.FromCtx(ctx).Warn("cache: corrupt entry", zap.String("restaurant_id", id.String()), zap.Error(err))
		c.Invalidate(ctx, id)
		return nil, false
	}
	return &r, true
}

func (c *redisCache) Set(ctx context.Context, r *Restaurant) {
	raw, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(r.ID), raw, c.ttl).Err(); err != nil {
		logger.FromCtx(ctx).Warn("cache: set failed", zap.String("restaurant_id", r.ID.String()), zap.Error(err))
	}
}

func (c *redisCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if err := c.rdb.Del(ctx, cacheKey(id)).Err(); err != nil {
		logger.FromCtx(ctx).Warn("cache: invalidate failed", zap.String("restaurant_id", id.String()), zap.Error(err))
	}
}

type nopCache struct{}

// NewNopCache is used when no Redis address is configured.
func NewNopCache() Cache { return nopCache{} }

func (nopCache) Get(context.Context, uuid.UUID) (*Restaurant, bool) { return nil, false }
func (nopCache) Set(context.Context, *Restaurant)                    {}
func (nopCache) Invalidate(context.Context, uuid.UUID)               {}
