package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheKey is the Redis key holding the serialized catalog payload.
const CacheKey = "catalog:treats"

// Cache stores the catalog JSON in Redis so restarts and sibling processes
// can serve it without re-reading the source document.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache constructs a catalog cache helper.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Get loads cached items. It reports whether the key existed.
func (c *Cache) Get(ctx context.Context) ([]Item, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, CacheKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, err
	}
	return items, true, nil
}

// Set serializes the items and stores them with the configured TTL.
func (c *Cache) Set(ctx context.Context, items []Item) error {
	if c == nil || c.client == nil {
		return nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, CacheKey, data, c.ttl).Err()
}
