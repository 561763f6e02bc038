// Package lruk implements LRU-K: a key is only admitted to the main cache
// once it has been accessed K times, filtering one-hit wonders out of the
// hot set. A history LRU tracks access counts for not-yet-admitted keys.
package lruk

import (
	"sync"

	"github.com/cachekit/polycache/policy"
	"github.com/cachekit/polycache/policy/lru"
)

const defaultHistoryRatio = 2.5
const defaultK = 2

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*config)

type config struct {
	historyRatio float64
	k            int
	metrics      policy.Metrics
}

// WithMetrics attaches an observability sink. Hit/Miss reflect main-cache
// residency as seen by callers.
func WithMetrics[K comparable, V any](m policy.Metrics) Option[K, V] {
	return func(c *config) { c.metrics = m }
}

// WithHistoryRatio sets the history cache's size as a multiple of the main
// cache's capacity. Default 2.5.
func WithHistoryRatio[K comparable, V any](ratio float64) Option[K, V] {
	return func(c *config) { c.historyRatio = ratio }
}

// WithK sets the number of accesses required before a key is promoted from
// history into the main cache. Default 2.
func WithK[K comparable, V any](k int) Option[K, V] {
	return func(c *config) { c.k = k }
}

// Cache is an LRU wrapped with a history-based admission filter.
//
// Concurrency: main and history each have their own lock (delegated to
// their own lru.Cache instances); the auxiliary history-value map has its
// own lock. No operation holds more than one of these at a time.
type Cache[K comparable, V any] struct {
	main    *lru.Cache[K, V]
	history *lru.Cache[K, int] // key -> access count
	k       int

	valMu   sync.Mutex
	pending map[K]V // deferred values for history-resident keys
	metrics policy.Metrics
}

// New constructs an LRU-K cache with the given main capacity.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	if capacity < 0 {
		panic("lruk: capacity must be >= 0")
	}
	cfg := config{historyRatio: defaultHistoryRatio, k: defaultK, metrics: policy.NoopMetrics{}}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.k < 1 {
		panic("lruk: k must be >= 1")
	}
	historyCap := int(ceilF(float64(capacity) * cfg.historyRatio))
	return &Cache[K, V]{
		main:    lru.New[K, V](capacity),
		history: lru.New[K, int](historyCap),
		k:       cfg.k,
		pending: make(map[K]V),
		metrics: cfg.metrics,
	}
}

// Put inserts or overwrites key. Every put counts against history, even
// for main-resident keys. If key is already resident in main, the value is
// overwritten there directly. Otherwise the candidate value is recorded in
// the pending map; on the count reaching k, the key is promoted into main.
func (c *Cache[K, V]) Put(key K, value V) {
	if _, ok := c.main.Get(key); ok {
		c.main.Put(key, value)
		c.bumpHistory(key)
		return
	}
	c.valMu.Lock()
	c.pending[key] = value
	c.valMu.Unlock()
	if c.bumpHistory(key) >= c.k {
		c.promote(key)
	}
}

// Get reports whether key is resident in main. Every get counts against
// history, even a main hit. On a main miss with the count at k or above,
// the key's pending value (if any) is promoted into main and returned.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, inMain := c.main.Get(key)
	count := c.bumpHistory(key)
	if inMain {
		c.metrics.Hit()
		return v, true
	}
	if count >= c.k {
		if pv, ok := c.promote(key); ok {
			c.metrics.Hit()
			return pv, true
		}
	}
	c.metrics.Miss()
	var zero V
	return zero, false
}

// GetOrZero is the by-value variant.
func (c *Cache[K, V]) GetOrZero(key K) V {
	v, _ := c.Get(key)
	return v
}

// Len returns the number of main-resident (value-carrying) entries.
func (c *Cache[K, V]) Len() int {
	return c.main.Len()
}

// bumpHistory increments key's access count in the history cache and
// returns the new count.
func (c *Cache[K, V]) bumpHistory(key K) int {
	count, _ := c.history.Get(key)
	count++
	c.history.Put(key, count)
	return count
}

// promote moves key's deferred value from history into main. It reports
// false when no candidate value was recorded for key, in which case the
// history count is left in place.
func (c *Cache[K, V]) promote(key K) (V, bool) {
	c.valMu.Lock()
	v, has := c.pending[key]
	if has {
		delete(c.pending, key)
	}
	c.valMu.Unlock()

	if !has {
		var zero V
		return zero, false
	}
	c.history.Remove(key)
	c.main.Put(key, v)
	return v, true
}

func ceilF(x float64) float64 {
	i := float64(int64(x))
	if x > i {
		return i + 1
	}
	return i
}

var _ policy.Cache[int, int] = (*Cache[int, int])(nil)
