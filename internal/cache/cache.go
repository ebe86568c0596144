// Package cache provides the explicit, session-lifetime memo caches used by the
// loader and the statistics aggregator.
package cache

import (
	"strings"
	"sync"

	"github.com/KaramelBytes/housing-explorer/internal/metrics"
)

// Cache memoizes values by an explicit string key.
//
// Entries stored with Put or GetOrCompute live until Reset. Entries taken with
// Acquire are reference counted and dropped by the Release that brings their
// count to zero.
type Cache[V any] struct {
	name   string
	mu     sync.Mutex
	items  map[string]V
	refs   map[string]int
	hits   uint64
	misses uint64
}

// New returns an empty cache. The name labels the cache in metrics.
func New[V any](name string) *Cache[V] {
	return &Cache[V]{name: name, items: make(map[string]V), refs: make(map[string]int)}
}

// Get returns the cached value for key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	c.observe(ok)
	return v, ok
}

// Put stores v under key, replacing any previous value.
func (c *Cache[V]) Put(key string, v V) {
	c.mu.Lock()
	c.items[key] = v
	c.mu.Unlock()
}

// GetOrCompute returns the cached value for key or computes, stores and returns it.
// Failed computations are not cached. The boolean reports a cache hit.
//
// The lock is not held while fn runs; two callers racing on the same missing key
// may both compute, and the last one wins. Results for a key are deterministic so
// this only costs duplicate work.
func (c *Cache[V]) GetOrCompute(key string, fn func() (V, error)) (V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	v, err := fn()
	if err != nil {
		var zero V
		return zero, false, err
	}
	c.Put(key, v)
	return v, false, nil
}

// Acquire is GetOrCompute that also takes a reference on the entry. Every
// successful Acquire must be paired with a Release.
func (c *Cache[V]) Acquire(key string, fn func() (V, error)) (V, bool, error) {
	c.mu.Lock()
	if v, ok := c.items[key]; ok {
		c.observe(true)
		c.refs[key]++
		c.mu.Unlock()
		return v, true, nil
	}
	c.observe(false)
	c.mu.Unlock()

	v, err := fn()
	if err != nil {
		var zero V
		return zero, false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// another caller may have stored the key while fn ran
	if cur, ok := c.items[key]; ok {
		v = cur
	} else {
		c.items[key] = v
	}
	c.refs[key]++
	return v, false, nil
}

// Release drops one reference taken by Acquire and evicts the entry when none
// remain. It reports whether the entry was evicted.
func (c *Cache[V]) Release(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.refs[key]
	if !ok {
		return false
	}
	if n > 1 {
		c.refs[key] = n - 1
		return false
	}
	delete(c.refs, key)
	delete(c.items, key)
	return true
}

// Refs returns the number of outstanding references on key.
func (c *Cache[V]) Refs(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refs[key]
}

// DeletePrefix removes every unreferenced entry whose key starts with prefix and
// returns how many were removed.
func (c *Cache[V]) DeletePrefix(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.items {
		if _, held := c.refs[k]; held || !strings.HasPrefix(k, prefix) {
			continue
		}
		delete(c.items, k)
		n++
	}
	return n
}

// Len reports the number of cached entries.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats returns the hit and miss counters.
func (c *Cache[V]) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Reset drops every entry and zeroes the counters.
func (c *Cache[V]) Reset() {
	c.mu.Lock()
	c.items = make(map[string]V)
	c.refs = make(map[string]int)
	c.hits, c.misses = 0, 0
	c.mu.Unlock()
}

// observe must be called with c.mu held.
func (c *Cache[V]) observe(hit bool) {
	result := "miss"
	if hit {
		c.hits++
		result = "hit"
	} else {
		c.misses++
	}
	metrics.CacheLookups.WithLabelValues(c.name, result).Inc()
}
