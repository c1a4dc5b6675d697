package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ViewCache is a generic JSON-backed Redis cache for entity records.
// Bind it to a specific type T; each instance holds a Redis client, a key
// prefix and an optional TTL (pass 0 for keys that should not expire).
//
// A nil *ViewCache is valid and behaves as an always-empty cache, so callers
// running without Redis need no special casing.
type ViewCache[T any] struct {
	client *goredis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewViewCache creates a ViewCache backed by the provided Redis client.
// A nil client yields a nil cache.
func NewViewCache[T any](client *goredis.Client, prefix string, ttl time.Duration) *ViewCache[T] {
	if client == nil {
		return nil
	}
	return &ViewCache[T]{client: client, prefix: prefix, ttl: ttl, logger: slog.Default()}
}

// Get retrieves and unmarshals a value from Redis.
// Returns (nil, false) on any miss or deserialisation error.
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	if c == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, c.prefix+key).Result()
	if err != nil {
		if err != goredis.Nil {
			c.logger.WarnContext(ctx, "view cache read failed", "key", c.prefix+key, "error", err)
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, false
	}
	return &v, true
}

// Set marshals value and stores it in Redis under key.
// Errors are logged rather than returned; a cache write miss is non-fatal.
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	if c == nil || value == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "view cache marshal failed", "key", c.prefix+key, "error", err)
		return
	}
	if err := c.client.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "view cache write failed", "key", c.prefix+key, "error", err)
	}
}

// Delete removes a key from Redis.
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.logger.WarnContext(ctx, "view cache delete failed", "key", c.prefix+key, "error", err)
	}
}
