// Package wtinylfu implements W-TinyLFU: a small window LRU that absorbs
// recency bursts, backed by a large main LRU guarded by a Count-Min Sketch
// admission filter so that a recency burst can't flush out a genuinely
// popular key.
package wtinylfu

import (
	"sync"

	"github.com/cachekit/polycache/policy"
	"github.com/cachekit/polycache/policy/lru"
	"github.com/cachekit/polycache/policy/sketch"
)

const defaultWindowRatio = 0.01
const sketchDepth = 4
const sketchMinWidth = 256
const decayEvery = 1000

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*config)

type config struct {
	windowRatio float64
}

// WithWindowRatio sets the window tier's share of total capacity. Default
// 0.01 (1%), with a floor of 1 entry.
func WithWindowRatio[K comparable, V any](ratio float64) Option[K, V] {
	return func(c *config) { c.windowRatio = ratio }
}

// Cache is a window-TinyLFU cache.
type Cache[K comparable, V any] struct {
	window *lru.Cache[K, V]
	main   *lru.Cache[K, V]
	sk     *sketch.CountMinSketch[K]

	statsMu      sync.Mutex
	admissionOps int
	windowHits   int
	mainHits     int
	misses       int
}

// New constructs a W-TinyLFU cache of the given total capacity.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	if capacity < 0 {
		panic("wtinylfu: capacity must be >= 0")
	}
	cfg := config{windowRatio: defaultWindowRatio}
	for _, opt := range opts {
		opt(&cfg)
	}
	windowCap := maxInt(1, int(ceilF(float64(capacity)*cfg.windowRatio)))
	mainCap := maxInt(1, capacity-windowCap)
	if capacity == 0 {
		windowCap, mainCap = 0, 0
	}
	width := maxInt(sketchMinWidth, 4*capacity)
	if width < 1 {
		width = sketchMinWidth
	}
	return &Cache[K, V]{
		window: lru.New[K, V](windowCap),
		main:   lru.New[K, V](mainCap),
		sk:     sketch.New[K](width, sketchDepth),
	}
}

// Put inserts or overwrites key. An existing window or main entry is
// overwritten in place (main entries are not promoted back to window).
// New keys enter the window; if the window is full, its tail is pushed
// through the admission filter into main.
func (c *Cache[K, V]) Put(key K, value V) {
	c.sk.Increment(key)

	if _, ok := c.window.Get(key); ok {
		c.window.Put(key, value)
		return
	}
	if _, ok := c.main.Get(key); ok {
		c.main.Put(key, value)
		return
	}

	if c.window.Len() >= c.window.Cap() {
		c.admitFromWindow()
	}
	c.window.Put(key, value)
	c.bumpAdmissionOps()
}

// Get reports a hit from either tier without promoting between them.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.sk.Increment(key)

	if v, ok := c.window.Get(key); ok {
		c.recordHit(true)
		return v, true
	}
	if v, ok := c.main.Get(key); ok {
		c.recordHit(false)
		return v, true
	}
	c.recordMiss()
	var zero V
	return zero, false
}

// GetOrZero is the by-value variant.
func (c *Cache[K, V]) GetOrZero(key K) V {
	v, _ := c.Get(key)
	return v
}

// Remove deletes key from whichever tier holds it.
func (c *Cache[K, V]) Remove(key K) bool {
	if c.window.Remove(key) {
		return true
	}
	return c.main.Remove(key)
}

// Len returns the total number of resident entries across both tiers.
func (c *Cache[K, V]) Len() int {
	return c.window.Len() + c.main.Len()
}

// OldestKey peeks the main tier's least-recently-used key (the tier most
// representative of long-term residency); the zero value of K if both
// tiers are empty.
func (c *Cache[K, V]) OldestKey() K {
	if c.main.Len() > 0 {
		return c.main.OldestKey()
	}
	return c.window.OldestKey()
}

// WindowHitRate returns the fraction of Get calls served by the window tier.
func (c *Cache[K, V]) WindowHitRate() float64 {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	total := c.windowHits + c.mainHits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.windowHits) / float64(total)
}

// HitRate returns the overall fraction of Get calls that hit either tier.
func (c *Cache[K, V]) HitRate() float64 {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	total := c.windowHits + c.mainHits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.windowHits+c.mainHits) / float64(total)
}

// admitFromWindow pushes the window's least-recently-used entry through the
// admission filter into main: unconditional if main has room, otherwise a
// frequency contest against main's own tail.
func (c *Cache[K, V]) admitFromWindow() {
	candidateKey := c.window.OldestKey()
	candidateVal, ok := c.window.Get(candidateKey)
	if !ok {
		return
	}
	c.window.Remove(candidateKey)

	if c.main.Len() < c.main.Cap() {
		c.main.Put(candidateKey, candidateVal)
		return
	}
	incumbentKey := c.main.OldestKey()
	if c.sk.Frequency(candidateKey) >= c.sk.Frequency(incumbentKey) {
		c.main.Remove(incumbentKey)
		c.main.Put(candidateKey, candidateVal)
	}
	// Otherwise the candidate is discarded: it leaves the cache entirely.
}

func (c *Cache[K, V]) bumpAdmissionOps() {
	c.statsMu.Lock()
	c.admissionOps++
	due := c.admissionOps >= decayEvery
	if due {
		c.admissionOps = 0
	}
	c.statsMu.Unlock()
	if due {
		c.sk.Decay()
	}
}

func (c *Cache[K, V]) recordHit(inWindow bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	if inWindow {
		c.windowHits++
	} else {
		c.mainHits++
	}
}

func (c *Cache[K, V]) recordMiss() {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.misses++
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func ceilF(x float64) float64 {
	i := float64(int64(x))
	if x > i {
		return i + 1
	}
	return i
}

var _ policy.Cache[int, int] = (*Cache[int, int])(nil)
