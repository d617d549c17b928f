package reports

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores assembled reports in Redis as JSON. Entries expire by TTL
// only; nothing invalidates them early.
type Cache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client or a non-positive TTL
// yields a disabled cache.
func NewCache(client redis.Cmdable, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Enabled reports whether reads and writes reach Redis.
func (c *Cache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	if c == nil {
		return 0
	}
	return c.ttl
}

// errMiss reports an absent entry.
var errMiss = errors.New("reports: cache miss")

// Get decodes the entry at key into dest. It returns errMiss when the entry
// is absent or the cache is disabled.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) error {
	if !c.Enabled() {
		return errMiss
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return errMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}

// Set stores value at key for the cache TTL.
func (c *Cache) Set(ctx context.Context, key string, value interface{}) error {
	if !c.Enabled() {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}
