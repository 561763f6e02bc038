// Package lfu implements frequency-bucket eviction: LFU, and an aging
// variant that periodically decays all frequencies so old popularity
// doesn't pin stale entries forever.
package lfu

import (
	"container/list"
	"sync"

	"github.com/cachekit/polycache/policy"
)

const defaultMaxAverageFreq = 1_000_000
const defaultAgingThreshold = 10000
const defaultAgingFactor = 0.8

type entry[K comparable, V any] struct {
	key  K
	val  V
	freq int
}

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMetrics attaches an observability sink.
func WithMetrics[K comparable, V any](m policy.Metrics) Option[K, V] {
	return func(c *Cache[K, V]) { c.metrics = m }
}

// WithMaxAverageFreq sets the hard ceiling on average frequency before the
// overflow handler (plain LFU) or a decay (aging LFU) fires. Default 1_000_000.
func WithMaxAverageFreq[K comparable, V any](max int) Option[K, V] {
	return func(c *Cache[K, V]) { c.maxAverageFreq = max }
}

// WithAging enables the LFU-Aging variant: every agingThreshold operations,
// every resident frequency is multiplied by agingFactor (floored at 1).
// Defaults: agingThreshold 10000, agingFactor 0.8.
func WithAging[K comparable, V any](agingThreshold int, agingFactor float64) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.aging = true
		c.agingThreshold = agingThreshold
		c.agingFactor = agingFactor
	}
}

// Cache is a fixed-capacity, thread-safe LFU cache with an optional aging
// decay.
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	m       map[K]*list.Element // key -> element in its frequency bucket
	buckets map[int]*list.List  // freq -> FIFO list of *entry[K,V]
	cap     int

	minFreq        int
	curTotalFreq   int
	operationCount int

	maxAverageFreq int
	aging          bool
	agingThreshold int
	agingFactor    float64

	metrics policy.Metrics
}

// New constructs an LFU cache with the given entry capacity.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	if capacity < 0 {
		panic("lfu: capacity must be >= 0")
	}
	c := &Cache[K, V]{
		m:              make(map[K]*list.Element, capacity),
		buckets:        make(map[int]*list.List),
		cap:            capacity,
		minFreq:        1,
		maxAverageFreq: defaultMaxAverageFreq,
		agingThreshold: defaultAgingThreshold,
		agingFactor:    defaultAgingFactor,
		metrics:        policy.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Put inserts or overwrites key with value. An overwrite counts as a hit
// (frequency increments). A new insertion evicts from the minFreq bucket
// first if the cache is full.
func (c *Cache[K, V]) Put(key K, value V) {
	if c.cap == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.m[key]; ok {
		e := el.Value.(*entry[K, V])
		e.val = value
		c.touchLocked(el, e)
		return
	}
	if len(c.m) >= c.cap {
		c.evictLocked()
	}
	e := &entry[K, V]{key: key, val: value, freq: 1}
	c.pushBucketLocked(1, e)
	c.minFreq = 1
	c.curTotalFreq++
	c.bumpOperationLocked()
	c.metrics.Size(len(c.m))
}

// Get reports whether key is present and, if so, increments its frequency
// and returns its value.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.m[key]
	if !ok {
		c.metrics.Miss()
		var zero V
		return zero, false
	}
	e := el.Value.(*entry[K, V])
	c.touchLocked(el, e)
	c.metrics.Hit()
	return e.val, true
}

// GetOrZero is the by-value variant.
func (c *Cache[K, V]) GetOrZero(key K) V {
	v, _ := c.Get(key)
	return v
}

// Purge removes all entries and resets frequency bookkeeping.
func (c *Cache[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[K]*list.Element, c.cap)
	c.buckets = make(map[int]*list.List)
	c.minFreq = 1
	c.curTotalFreq = 0
	c.operationCount = 0
}

// Len returns the number of resident entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}

// -------------------- internals (mu held) --------------------

func (c *Cache[K, V]) touchLocked(el *list.Element, e *entry[K, V]) {
	oldFreq := e.freq
	bucket := c.buckets[oldFreq]
	bucket.Remove(el)
	if bucket.Len() == 0 {
		delete(c.buckets, oldFreq)
		if oldFreq == c.minFreq {
			c.minFreq++
		}
	}
	e.freq++
	newEl := c.pushBucketLocked(e.freq, e)
	c.m[e.key] = newEl
	c.curTotalFreq++
	c.bumpOperationLocked()
}

func (c *Cache[K, V]) pushBucketLocked(freq int, e *entry[K, V]) *list.Element {
	b, ok := c.buckets[freq]
	if !ok {
		b = list.New()
		c.buckets[freq] = b
	}
	el := b.PushBack(e)
	c.m[e.key] = el
	return el
}

// evictLocked evicts the FIFO head of the minFreq bucket, recomputing
// minFreq first if it is stale.
func (c *Cache[K, V]) evictLocked() {
	b, ok := c.buckets[c.minFreq]
	if !ok || b.Len() == 0 {
		c.recomputeMinFreqLocked()
		b, ok = c.buckets[c.minFreq]
		if !ok || b.Len() == 0 {
			return
		}
	}
	front := b.Front()
	e := front.Value.(*entry[K, V])
	b.Remove(front)
	if b.Len() == 0 {
		delete(c.buckets, c.minFreq)
	}
	delete(c.m, e.key)
	c.metrics.Evict(policy.EvictPolicy)
}

func (c *Cache[K, V]) recomputeMinFreqLocked() {
	min := 0
	for f, b := range c.buckets {
		if b.Len() == 0 {
			continue
		}
		if min == 0 || f < min {
			min = f
		}
	}
	if min == 0 {
		min = 1
	}
	c.minFreq = min
}

// bumpOperationLocked advances the operation counter and runs the overflow
// handler (plain LFU) or periodic decay (aging LFU) when due.
func (c *Cache[K, V]) bumpOperationLocked() {
	c.operationCount++
	if len(c.m) == 0 {
		return
	}
	curAverageFreq := c.curTotalFreq / len(c.m)

	if c.aging {
		if c.operationCount >= c.agingThreshold || curAverageFreq > c.maxAverageFreq {
			c.decayLocked()
			c.operationCount = 0
		}
		return
	}
	if curAverageFreq > c.maxAverageFreq {
		c.overflowLocked()
	}
}

// decayLocked multiplies every resident frequency by agingFactor (floored
// at 1), rebuckets, and recomputes curTotalFreq and minFreq.
func (c *Cache[K, V]) decayLocked() {
	newBuckets := make(map[int]*list.List)
	total := 0
	for _, el := range c.m {
		e := el.Value.(*entry[K, V])
		newFreq := int(float64(e.freq) * c.agingFactor)
		if newFreq < 1 {
			newFreq = 1
		}
		e.freq = newFreq
		total += newFreq
	}
	for key, el := range c.m {
		e := el.Value.(*entry[K, V])
		b, ok := newBuckets[e.freq]
		if !ok {
			b = list.New()
			newBuckets[e.freq] = b
		}
		c.m[key] = b.PushBack(e)
	}
	c.buckets = newBuckets
	c.curTotalFreq = total
	c.recomputeMinFreqLocked()
}

// overflowLocked subtracts maxAverageFreq/2 from every resident frequency
// (floored at 1) and rebuckets. Used by plain (non-aging) LFU.
func (c *Cache[K, V]) overflowLocked() {
	sub := c.maxAverageFreq / 2
	newBuckets := make(map[int]*list.List)
	total := 0
	for _, el := range c.m {
		e := el.Value.(*entry[K, V])
		newFreq := e.freq - sub
		if newFreq < 1 {
			newFreq = 1
		}
		e.freq = newFreq
		total += newFreq
	}
	for key, el := range c.m {
		e := el.Value.(*entry[K, V])
		b, ok := newBuckets[e.freq]
		if !ok {
			b = list.New()
			newBuckets[e.freq] = b
		}
		c.m[key] = b.PushBack(e)
	}
	c.buckets = newBuckets
	c.curTotalFreq = total
	c.recomputeMinFreqLocked()
}

var _ policy.Cache[int, int] = (*Cache[int, int])(nil)
