package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dogpark/internal/middleware"
	"dogpark/internal/observability"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const (
	PostDetailKeyPrefix = "post:%d:detail"
	TagListKey          = "tags:list"
)

const (
	PostDetailTTL = 5 * time.Minute
	TagListTTL    = time.Minute

	localCacheSize = 1024
	localCacheTTL  = 30 * time.Second
)

// PostDetailKey is the cache key of posts.getById for postID.
func PostDetailKey(postID uint) string {
	return fmt.Sprintf(PostDetailKeyPrefix, postID)
}

// Cache is a cache-aside helper over Redis. When Redis is not configured it
// falls back to a small in-process LRU with a short TTL.
type Cache struct {
	rdb   *redis.Client
	local *expirable.LRU[string, []byte]
}

// New returns a Cache. rdb may be nil.
func New(rdb *redis.Client) *Cache {
	c := &Cache{rdb: rdb}
	if rdb == nil {
		c.local = expirable.NewLRU[string, []byte](localCacheSize, nil, localCacheTTL)
	}
	return c
}

// Client returns the underlying Redis client, or nil.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// GetJSON attempts to get the key and unmarshal into dest.
// Returns (true, nil) if found and unmarshaled, (false, nil) if not found.
func (c *Cache) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	if c == nil {
		return false, nil
	}
	var raw []byte
	if c.rdb != nil {
		s, err := c.rdb.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		raw = s
	} else {
		v, ok := c.local.Get(key)
		if !ok {
			return false, nil
		}
		raw = v
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON marshals v and stores it under key with ttl.
func (c *Cache) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if c.rdb != nil {
		return c.rdb.Set(ctx, key, b, ttl).Err()
	}
	c.local.Add(key, b)
	return nil
}

// Aside tries the cache first; on a miss it calls fetch (which must populate
// dest) and stores dest under key. Cache failures never fail the request.
func (c *Cache) Aside(ctx context.Context, name, key string, dest any, ttl time.Duration, fetch func() error) error {
	found, err := c.GetJSON(ctx, key, dest)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	if found {
		observability.CacheLookups.WithLabelValues(name, "hit").Inc()
		return nil
	}
	observability.CacheLookups.WithLabelValues(name, "miss").Inc()

	if err := fetch(); err != nil {
		return err
	}

	if err := c.SetJSON(ctx, key, dest, ttl); err != nil {
		middleware.Logger.WarnContext(ctx, "cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
	return nil
}

// Invalidate removes keys from the cache.
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	if c.rdb != nil {
		if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
			middleware.Logger.WarnContext(ctx, "cache invalidation failed", slog.String("error", err.Error()))
		}
		return
	}
	for _, k := range keys {
		c.local.Remove(k)
	}
}

// InvalidatePost drops the cached detail view of postID.
func (c *Cache) InvalidatePost(ctx context.Context, postID uint) {
	c.Invalidate(ctx, PostDetailKey(postID))
}

// InvalidateTags drops the cached tag list.
func (c *Cache) InvalidateTags(ctx context.Context) {
	c.Invalidate(ctx, TagListKey)
}
