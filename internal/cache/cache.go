// Package cache is a small in-process TTL cache with explicit invalidation.
package cache

import (
	"sync"
	"time"
)

type item[V any] struct {
	value   V
	expires time.Time
}

// Cache maps keys to values for a fixed TTL. A nil *Cache is valid and caches nothing.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	ttl      time.Duration
	items    map[K]item[V]
	now      func() time.Time
	observer func(K)
	// gen advances on every invalidation.
	gen uint64
}

// New returns a cache whose entries live for ttl. A ttl of zero or less disables caching
// and New returns nil.
func New[K comparable, V any](ttl time.Duration) *Cache[K, V] {
	if ttl <= 0 {
		return nil
	}
	return &Cache[K, V]{
		ttl:   ttl,
		items: make(map[K]item[V]),
		now:   time.Now,
	}
}

// OnInvalidate registers fn to be called with every key removed by Invalidate or InvalidateFunc.
func (c *Cache[K, V]) OnInvalidate(fn func(key K)) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// SetClock replaces the time source used for expiry.
func (c *Cache[K, V]) SetClock(now func() time.Time) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	var zero V
	if c == nil {
		return zero, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.items[key]
	if !ok {
		return zero, false
	}
	if !c.now().Before(it.expires) {
		delete(c.items, key)
		return zero, false
	}
	return it.value, true
}

func (c *Cache[K, V]) Set(key K, value V) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = item[V]{value: value, expires: c.now().Add(c.ttl)}
}

// Generation returns a token to pass to SetIfGeneration. Take it before reading the backing
// store.
func (c *Cache[K, V]) Generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// SetIfGeneration stores value only if nothing was invalidated since gen was taken, so a read
// that raced a write cannot cache what the write replaced. It reports whether value was stored.
func (c *Cache[K, V]) SetIfGeneration(key K, gen uint64, value V) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.items[key] = item[V]{value: value, expires: c.now().Add(c.ttl)}
	return true
}

// Invalidate drops key. It notifies the observer even when the key was not cached, so callers
// can assert what a write invalidated regardless of what was read before.
func (c *Cache[K, V]) Invalidate(key K) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, key)
	c.gen++
	observer := c.observer
	c.mu.Unlock()
	if observer != nil {
		observer(key)
	}
}

// InvalidateFunc drops every cached entry for which match returns true.
func (c *Cache[K, V]) InvalidateFunc(match func(key K, value V) bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.gen++
	var dropped []K
	for k, it := range c.items {
		if match(k, it.value) {
			delete(c.items, k)
			dropped = append(dropped, k)
		}
	}
	observer := c.observer
	c.mu.Unlock()
	if observer != nil {
		for _, k := range dropped {
			observer(k)
		}
	}
}

// Len reports how many entries are stored, expired ones included.
func (c *Cache[K, V]) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}
