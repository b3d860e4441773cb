// Package cache holds the Redis-backed read cache for target rating stats.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roomhaven/reviews-service/internal/domain"
)

// StatsCache caches computed aggregates for the read-only stats path. A nil
// *StatsCache is a valid no-op cache, so wiring stays optional.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache with the given TTL.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(target domain.TargetRef) string {
	return fmt.Sprintf("reviews:stats:%s:%s", target.Kind, target.ID)
}

// Get returns the cached aggregate for a target, or (nil, nil) on a miss.
func (c *StatsCache) Get(ctx context.Context, target domain.TargetRef) (*domain.Aggregate, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, statsKey(target)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached stats: %w", err)
	}

	var agg domain.Aggregate
	if err := json.Unmarshal(data, &agg); err != nil {
		return nil, fmt.Errorf("decode cached stats: %w", err)
	}
	return &agg, nil
}

// Set stores the aggregate for a target.
func (c *StatsCache) Set(ctx context.Context, target domain.TargetRef, agg domain.Aggregate) error {
	if c == nil {
		return nil
	}

	data, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := c.client.Set(ctx, statsKey(target), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached stats: %w", err)
	}
	return nil
}

// Invalidate drops the cached aggregate for a target. Called after every
// recompute so readers never see a summary older than the last mutation.
func (c *StatsCache) Invalidate(ctx context.Context, target domain.TargetRef) error {
	if c == nil {
		return nil
	}
	if err := c.client.Del(ctx, statsKey(target)).Err(); err != nil {
		return fmt.Errorf("invalidate cached stats: %w", err)
	}
	return nil
}
