package cachemanager

import (
	"context"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DefaultExpiration      = 10 * time.Minute
	DefaultCleanupInterval = 30 * time.Minute

	// NoExpiration keeps entries until they are deleted or flushed.
	NoExpiration = gocache.NoExpiration
)

var _ CacheManager[string, int] = (*InMemoryCacheManager[string, int])(nil)

// NewInMemoryCacheManager creates an in-memory cache. useCase only labels log records.
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration, logger *slog.Logger) *InMemoryCacheManager[K, V] {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
		logger:  logger,
	}
}

// InMemoryCacheManager is the go-cache backed CacheManager.
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
	logger  *slog.Logger
}

// Get retrieves an item from the cache by its key.
func (c *InMemoryCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zero V

	value, found := c.cache.Get(string(key))
	if !found {
		return zero, false
	}

	v, ok := value.(V)
	if !ok {
		c.logger.ErrorContext(ctx, "wrong type assertion when getting value", "cache", c.useCase, "key", string(key))
		return zero, false
	}

	c.logger.DebugContext(ctx, "cache hit", "cache", c.useCase, "key", string(key))
	return v, true
}

// Set stores value under key with the given TTL. A zero ttl uses the cache default.
func (c *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes the given keys.
func (c *InMemoryCacheManager[K, V]) Delete(_ context.Context, keys ...K) {
	for _, key := range keys {
		c.cache.Delete(string(key))
	}
}

// Flush removes every entry.
func (c *InMemoryCacheManager[K, V]) Flush(_ context.Context) {
	c.cache.Flush()
}

// Count returns the number of entries, expired-but-not-collected ones included.
func (c *InMemoryCacheManager[K, V]) Count() int {
	return c.cache.ItemCount()
}
