package cache

import (
	"context"
	"time"
)

// NullCache disables caching: every layout lookup misses and the positions
// are recomputed. Selected when neither a cache directory nor a redis
// address is configured.
type NullCache struct{}

// NewNullCache creates a cache that stores nothing.
func NewNullCache() Cache { return NullCache{} }

// Get always misses.
func (NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set discards the value.
func (NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete is a no-op.
func (NullCache) Delete(ctx context.Context, key string) error { return nil }

// Close is a no-op.
func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
