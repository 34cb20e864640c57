// Package cache provides pluggable byte caches for derived artifacts.
//
// The explorer caches computed node positions keyed by snapshot hash, so an
// unchanged inventory reopens with its familiar layout. Backends:
//   - FileCache: sharded files under a directory, for single-host CLI use
//   - RedisCache: shared cache for setups where several hosts explore the
//     same inventory
//   - NullCache: disables caching
//
// All backends store opaque bytes with an optional TTL and report misses via
// the (data, hit, err) triple rather than an error.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with optional expiration.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKey returns the cache key for computed positions of a snapshot.
func LayoutKey(snapshotHash string) string {
	return "layout:" + snapshotHash
}
