// Package cache provides in-process, time-bound memoization for fetched
// complaint data.
//
// Semantics:
//   - an entry is valid for TTL after it was written; reads do not refresh it
//   - there is no eviction beyond the validity check; the key space is small
//     (distinct region/filter/page combinations actually visited)
//   - concurrent fetches for the same key are deduplicated: the second caller
//     waits for the first in-flight fetch instead of issuing its own
package cache

import (
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// TTL is the validity window measured from the time an entry was written.
const TTL = 5 * time.Minute

type entry[T any] struct {
	payload   T
	fetchedAt time.Time
}

// Cache is a TTL-bound memoization map. The zero value is not usable; call New.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]entry[T]
	ttl     time.Duration
	group   singleflight.Group

	// now is replaceable in tests.
	now func() time.Time
}

// New returns a Cache with the standard TTL.
func New[T any]() *Cache[T] {
	return &Cache[T]{
		entries: make(map[string]entry[T]),
		ttl:     TTL,
		now:     time.Now,
	}
}

// Get returns the cached payload for key if the entry is still valid.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().Sub(e.fetchedAt) >= c.ttl {
		var zero T
		return zero, false
	}
	return e.payload, true
}

// Set stores payload under key, stamping it with the current time.
func (c *Cache[T]) Set(key string, payload T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[T]{payload: payload, fetchedAt: c.now()}
}

// IsValid reports whether a valid entry exists for key.
func (c *Cache[T]) IsValid(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// Invalidate drops the entry for key, if any.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// InvalidateAll drops every entry.
func (c *Cache[T]) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[T])
}

// Do returns the cached payload for key when valid, otherwise runs fetch and
// stores its result. force skips the validity check but still re-populates
// the entry, so the cache stays coherent with the latest known state.
// Concurrent callers for the same key share a single fetch.
func (c *Cache[T]) Do(key string, force bool, fetch func() (T, error)) (T, error) {
	if !force {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// Another caller may have filled the entry while we waited on the
		// flight lock; a forced refresh still goes to the source.
		if !force {
			if v, ok := c.Get(key); ok {
				return v, nil
			}
		}
		payload, err := fetch()
		if err != nil {
			return nil, err
		}
		c.Set(key, payload)
		return payload, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// SetClock replaces the time source. Test hook.
func (c *Cache[T]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
