// Package lru implements a classic recency-ordered eviction cache: O(1)
// put/get/evict via a map plus a sentinel-headed intrusive doubly linked
// list (head = most-recently-used, tail = least-recently-used).
package lru

import (
	"sync"

	"github.com/cachekit/polycache/policy"
)

// node is an intrusive doubly linked list element owned by a Cache.
// Back-edges (prev) are non-owning; removing a node always disconnects
// both directions so neither dangles.
type node[K comparable, V any] struct {
	key K
	val V

	prev *node[K, V]
	next *node[K, V]
}

// Option configures optional ambient wiring for a Cache.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMetrics attaches an observability sink. The default is policy.NoopMetrics.
func WithMetrics[K comparable, V any](m policy.Metrics) Option[K, V] {
	return func(c *Cache[K, V]) { c.metrics = m }
}

// Cache is a fixed-capacity, thread-safe LRU cache.
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	m       map[K]*node[K, V]
	head    *node[K, V] // dummy sentinel; head.next = most-recent
	tail    *node[K, V] // dummy sentinel; tail.prev = least-recent
	cap     int
	metrics policy.Metrics
}

// New constructs an LRU cache with the given entry capacity. A capacity of
// 0 is legal and degenerate: every Put is a no-op and every Get misses,
// per the capacity-0 contract shared by all policies in this module.
// A negative capacity is a programmer error and panics.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	if capacity < 0 {
		panic("lru: capacity must be >= 0")
	}
	c := &Cache[K, V]{
		m:       make(map[K]*node[K, V], capacity),
		cap:     capacity,
		metrics: policy.NoopMetrics{},
	}
	c.head = &node[K, V]{}
	c.tail = &node[K, V]{}
	c.head.next = c.tail
	c.tail.prev = c.head
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put inserts or overwrites key with value, promoting it to most-recently-used.
func (c *Cache[K, V]) Put(key K, value V) {
	if c.cap == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.m[key]; ok {
		n.val = value
		c.moveToFront(n)
		return
	}
	if len(c.m) >= c.cap {
		c.evictOldestLocked()
	}
	n := &node[K, V]{key: key, val: value}
	c.m[key] = n
	c.pushFront(n)
	c.metrics.Size(len(c.m))
}

// Get reports whether key is present and, if so, promotes it to
// most-recently-used and returns its value.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.m[key]
	if !ok {
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	c.moveToFront(n)
	c.metrics.Hit()
	return n.val, true
}

// GetOrZero returns the stored value, or the zero value of V on miss.
func (c *Cache[K, V]) GetOrZero(key K) V {
	v, _ := c.Get(key)
	return v
}

// Remove deletes key if present and reports whether it was found.
func (c *Cache[K, V]) Remove(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.m[key]
	if !ok {
		return false
	}
	c.unlink(n)
	delete(c.m, key)
	c.metrics.Evict(policy.EvictExplicit)
	c.metrics.Size(len(c.m))
	return true
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// Cap returns the configured entry capacity.
func (c *Cache[K, V]) Cap() int {
	return c.cap
}

// OldestKey peeks the least-recently-used key without mutating order. It
// returns the zero value of K if the cache is empty.
func (c *Cache[K, V]) OldestKey() K {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tail.prev == c.head {
		var zero K
		return zero
	}
	return c.tail.prev.key
}

// -------------------- internals (mu held) --------------------

func (c *Cache[K, V]) pushFront(n *node[K, V]) {
	n.prev = c.head
	n.next = c.head.next
	c.head.next.prev = n
	c.head.next = n
}

func (c *Cache[K, V]) unlink(n *node[K, V]) {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev, n.next = nil, nil
}

func (c *Cache[K, V]) moveToFront(n *node[K, V]) {
	if c.head.next == n {
		return
	}
	n.prev.next = n.next
	n.next.prev = n.prev
	c.pushFront(n)
}

// evictOldestLocked evicts the tail (least-recently-used) node.
func (c *Cache[K, V]) evictOldestLocked() {
	n := c.tail.prev
	if n == c.head {
		return
	}
	c.unlink(n)
	delete(c.m, n.key)
	c.metrics.Evict(policy.EvictPolicy)
}

var _ policy.Cache[int, int] = (*Cache[int, int])(nil)
