package maps

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheTTL = 24 * time.Hour

// CachedProvider memoizes distance lookups in redis. Cache errors are ignored;
// the wrapped provider is always the source of truth.
type CachedProvider struct {
	inner DistanceProvider
	rdb   *redis.Client
}

func NewCachedProvider(inner DistanceProvider, rdb *redis.Client) *CachedProvider {
	return &CachedProvider{inner: inner, rdb: rdb}
}

func (c *CachedProvider) DistanceMeters(ctx context.Context, from, to, via string) int64 {
	key := fmt.Sprintf("dist:%s|%s|%s", from, to, via)

	if c.rdb != nil {
		if v, err := c.rdb.Get(ctx, key).Result(); err == nil {
			if meters, err := strconv.ParseInt(v, 10, 64); err == nil {
				return meters
			}
		}
	}

	meters := c.inner.DistanceMeters(ctx, from, to, via)

	if c.rdb != nil {
		_ = c.rdb.Set(ctx, key, strconv.FormatInt(meters, 10), cacheTTL).Err()
	}
	return meters
}

func (c *CachedProvider) Waypoints(from, to string) []string {
	return c.inner.Waypoints(from, to)
}
