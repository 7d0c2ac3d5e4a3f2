// internal/cache/cache.go
package cache

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fetcher loads a fresh value for a cache key from upstream.
type Fetcher[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value    V
	cachedAt time.Time
}

// call tracks a single in-flight fetch so concurrent readers of the same key
// share one upstream request.
type call[V any] struct {
	done chan struct{}
	val  V
	err  error
}

// Cache is a keyed TTL cache with in-flight request coalescing. A live entry
// is served without touching upstream; concurrent misses for the same key
// join the fetch already in flight. When ServeStale is set, a failed refresh
// falls back to the previously cached value instead of returning the error.
//
// Entries are owned by the cache; callers always receive values, never a
// shared reference into the maps.
type Cache[V any] struct {
	name       string
	ttl        time.Duration
	serveStale bool
	logger     *zap.Logger

	mu       sync.Mutex
	entries  map[string]entry[V]
	inflight map[string]*call[V]
	now      func() time.Time
}

// New creates a cache for one resource class. ServeStale should be set for
// read-mostly resources (price, chart) where availability beats freshness,
// and left unset where a stale value has no meaning (quotes).
func New[V any](name string, ttl time.Duration, serveStale bool, logger *zap.Logger) *Cache[V] {
	return &Cache[V]{
		name:       name,
		ttl:        ttl,
		serveStale: serveStale,
		logger:     logger.Named("cache").With(zap.String("resource", name)),
		entries:    make(map[string]entry[V]),
		inflight:   make(map[string]*call[V]),
		now:        time.Now,
	}
}

// Get returns the cached value for key, fetching through fetch on a miss.
// Exactly one fetch runs per key at a time; callers arriving while a fetch is
// in flight receive that fetch's result.
func (c *Cache[V]) Get(ctx context.Context, key string, fetch Fetcher[V]) (V, error) {
	c.mu.Lock()
	if e, ok := c.entries[key]; ok && c.now().Sub(e.cachedAt) < c.ttl {
		c.mu.Unlock()
		return e.value, nil
	}
	if cl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.val, cl.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	cl := &call[V]{done: make(chan struct{})}
	c.inflight[key] = cl
	c.mu.Unlock()

	val, err := fetch(ctx)

	c.mu.Lock()
	// The in-flight marker is cleared no matter how the fetch ended.
	delete(c.inflight, key)
	if err == nil {
		c.entries[key] = entry[V]{value: val, cachedAt: c.now()}
	} else if c.serveStale {
		if e, ok := c.entries[key]; ok {
			c.logger.Warn("fetch failed, serving stale entry",
				zap.String("key", key),
				zap.Time("cached_at", e.cachedAt),
				zap.Error(err))
			val, err = e.value, nil
		}
	}
	c.mu.Unlock()

	cl.val, cl.err = val, err
	close(cl.done)
	return val, err
}

// Peek returns the cached value for key if present, expired or not.
func (c *Cache[V]) Peek(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	return e.value, ok
}

// Invalidate drops the entry for key, if any.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len returns the number of stored entries, live or expired.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
