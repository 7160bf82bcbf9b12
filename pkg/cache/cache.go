// Package cache provides pluggable byte caches for conversion results.
//
// Rendering is a pure function of the diagram, so artifacts cached under
// a (diagram hash, format, layout) key are byte-identical to a fresh
// render by construction. Backends: [FileCache] for CLI usage,
// [RedisCache] for the HTTP server, [NullCache] to disable caching.
package cache

import (
	"context"
	"time"
)

// Default TTLs per key type.
const (
	// TTLDiagram is how long extracted diagrams stay cached.
	TTLDiagram = 24 * time.Hour

	// TTLArtifact is how long rendered artifacts stay cached. Rendering
	// is deterministic, so entries never go stale; the TTL only bounds
	// disk usage.
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get retrieves a value. The bool reports whether the key was found;
	// a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero ttl means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// NullCache is a no-op cache that never stores anything.
// Useful for testing or when caching should be disabled.
type NullCache struct{}

// NewNullCache creates a null cache.
func NewNullCache() Cache {
	return &NullCache{}
}

// Get always returns a cache miss.
func (c *NullCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullCache) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullCache) Close() error {
	return nil
}

// Ensure NullCache implements Cache.
var _ Cache = (*NullCache)(nil)
