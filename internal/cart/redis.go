package cart

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore persists one cart as a Redis hash of product name to quantity.
// Every write refreshes the key's TTL so abandoned carts expire on their own.
type RedisStore struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

func (s *RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return defaultTTL
	}
	return s.TTL
}

// Get loads the full hash and parses quantities.
func (s *RedisStore) Get(ctx context.Context) (map[string]int, error) {
	raw, err := s.Client.HGetAll(ctx, s.Key).Result()
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", s.Key, err)
	}
	entries := make(map[string]int, len(raw))
	for name, value := range raw {
		qty, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("cart %s entry %q has non-numeric quantity %q", s.Key, name, value)
		}
		entries[name] = qty
	}
	return entries, nil
}

// Set upserts one field of the hash and refreshes the TTL.
func (s *RedisStore) Set(ctx context.Context, name string, qty int) error {
	pipe := s.Client.TxPipeline()
	pipe.HSet(ctx, s.Key, name, qty)
	pipe.Expire(ctx, s.Key, s.ttl())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("persist cart %s: %w", s.Key, err)
	}
	return nil
}

// Clear deletes the hash.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.Client.Del(ctx, s.Key).Err(); err != nil {
		return fmt.Errorf("clear cart %s: %w", s.Key, err)
	}
	return nil
}

// Service hands out Redis-backed stores keyed by cart identifier.
type Service struct {
	Redis *redis.Client
	TTL   time.Duration
}

// StoreFor returns the store for the given cart id.
func (s *Service) StoreFor(id string) *RedisStore {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{Client: s.Redis, Key: "cart:" + id, TTL: ttl}
}
