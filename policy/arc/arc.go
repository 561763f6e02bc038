// Package arc implements Adaptive Replacement Cache: a self-tuning split
// between a recency list (LRU-part) and a frequency list (LFU-part), each
// backed by a ghost list of recently evicted keys used to bias the split
// toward whichever discipline would have avoided the miss.
package arc

import "github.com/cachekit/polycache/policy"

const defaultTransformThreshold = 2

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*config)

type config struct {
	transformThreshold int
}

// WithTransformThreshold sets the LRU-part access count required before a
// node is shadow-promoted into the LFU-part. Default 2.
func WithTransformThreshold[K comparable, V any](threshold int) Option[K, V] {
	return func(c *config) { c.transformThreshold = threshold }
}

// Cache is an Adaptive Replacement Cache. Both parts start at capacity C;
// the ghost-balancing rule shifts one unit of capacity from one part to the
// other at a time, so their sum stays at 2C.
type Cache[K comparable, V any] struct {
	lru *lruPart[K, V]
	lfu *lfuPart[K, V]
}

// New constructs an ARC cache of the given capacity.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	if capacity < 0 {
		panic("arc: capacity must be >= 0")
	}
	cfg := config{transformThreshold: defaultTransformThreshold}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.transformThreshold < 1 {
		panic("arc: transformThreshold must be >= 1")
	}
	return &Cache[K, V]{
		lru: newLRUPart[K, V](capacity, cfg.transformThreshold),
		lfu: newLFUPart[K, V](capacity),
	}
}

// Put inserts or overwrites key. The entry always lands in the LRU-part;
// if it is already shadow-resident in the LFU-part, that copy is updated
// too.
func (c *Cache[K, V]) Put(key K, value V) {
	c.checkGhostCaches(key)
	inLFU := c.lfu.contain(key)
	c.lru.put(key, value)
	if inLFU {
		c.lfu.put(key, value)
	}
}

// Get consults the LRU-part first, shadow-promoting into the LFU-part when
// the access count reaches transformThreshold, then falls back to the
// LFU-part.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.checkGhostCaches(key)
	if value, shouldTransform, hit := c.lru.get(key); hit {
		if shouldTransform {
			c.lfu.put(key, value)
		}
		return value, true
	}
	return c.lfu.get(key)
}

// GetOrZero is the by-value variant.
func (c *Cache[K, V]) GetOrZero(key K) V {
	v, _ := c.Get(key)
	return v
}

// checkGhostCaches consults both ghost lists and, on a hit, rebalances
// capacity toward the part whose discipline would have avoided the miss.
func (c *Cache[K, V]) checkGhostCaches(key K) bool {
	if c.lfu.checkGhost(key) {
		if c.lru.decreaseCapacity() {
			c.lfu.increaseCapacity()
		}
		return true
	}
	if c.lru.checkGhost(key) {
		if c.lfu.decreaseCapacity() {
			c.lru.increaseCapacity()
		}
		return true
	}
	return false
}

var _ policy.Cache[int, int] = (*Cache[int, int])(nil)
