package redis

import (
	"context"
	"time"
)

// CacheAdapter exposes the Redis client through the common cache
// interface so services cache against Redis or memory interchangeably.
type CacheAdapter struct {
	client *Client
}

// NewCacheAdapter wraps a Redis client as a cache
func NewCacheAdapter(client *Client) *CacheAdapter {
	return &CacheAdapter{client: client}
}

// Get retrieves a value from Redis
func (a *CacheAdapter) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := a.client.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Set stores a value in Redis with TTL
func (a *CacheAdapter) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return a.client.SetWithExpiry(ctx, key, string(value), ttl)
}

// Delete removes a key from Redis
func (a *CacheAdapter) Delete(ctx context.Context, key string) error {
	return a.client.Delete(ctx, key)
}

// Close is a no-op; the underlying client is shared
func (a *CacheAdapter) Close() error {
	return nil
}
