// Package adaptive implements a supervisor that runs four eviction
// policies in shadow on the same request stream and serves from whichever
// one is currently winning on cumulative hit-rate. Shadow evaluation costs
// roughly 4x memory and work, but it keeps the comparison unbiased: every
// child sees the exact same workload, so a switch is never based on stale
// or partial statistics.
package adaptive

import (
	"sync"

	"github.com/cachekit/polycache/policy"
	"github.com/cachekit/polycache/policy/arc"
	"github.com/cachekit/polycache/policy/lfu"
	"github.com/cachekit/polycache/policy/lru"
)

const defaultSwitchThreshold = 0.02
const defaultEvaluateEvery = 1000

// LFU-Aging child tuning, inherited from the supervisor's historical
// defaults: ceiling 8000, decay every 1000 operations, factor 0.5.
const agingMaxAverageFreq = 8000
const agingThreshold = 1000
const agingFactor = 0.5

// Strategy identifies one of the supervisor's child policies.
type Strategy int

const (
	StrategyLRU Strategy = iota
	StrategyLFU
	StrategyLFUAging
	StrategyARC

	numStrategies
)

func (s Strategy) String() string {
	switch s {
	case StrategyLRU:
		return "lru"
	case StrategyLFU:
		return "lfu"
	case StrategyLFUAging:
		return "lfu-aging"
	case StrategyARC:
		return "arc"
	default:
		return "unknown"
	}
}

// Option configures a Cache at construction time.
type Option[K comparable, V any] func(*Cache[K, V])

// WithMetrics attaches an observability sink. Hit/Miss reflect the current
// strategy's answers only, since that is what callers observe.
func WithMetrics[K comparable, V any](m policy.Metrics) Option[K, V] {
	return func(c *Cache[K, V]) { c.metrics = m }
}

// WithSwitchThreshold sets how much better (in absolute hit-rate) the best
// child must be before the supervisor switches to it. Default 0.02.
func WithSwitchThreshold[K comparable, V any](threshold float64) Option[K, V] {
	return func(c *Cache[K, V]) { c.switchThreshold = threshold }
}

// WithEvaluateEvery sets how many Get calls pass between strategy
// evaluations. Default 1000.
func WithEvaluateEvery[K comparable, V any](n int) Option[K, V] {
	return func(c *Cache[K, V]) { c.evaluateEvery = n }
}

// Cache is the adaptive supervisor. Each child runs at the full capacity C;
// Put and Get fan out to all of them, and the answer returned to the
// caller is always the current strategy's.
type Cache[K comparable, V any] struct {
	mu sync.Mutex

	children [numStrategies]policy.Cache[K, V]
	current  Strategy

	getCalls int
	hits     [numStrategies]int

	switchThreshold float64
	evaluateEvery   int
	metrics         policy.Metrics
}

// New constructs an adaptive cache of the given capacity. The initial
// strategy is LFU-Aging.
func New[K comparable, V any](capacity int, opts ...Option[K, V]) *Cache[K, V] {
	if capacity < 0 {
		panic("adaptive: capacity must be >= 0")
	}
	c := &Cache[K, V]{
		current:         StrategyLFUAging,
		switchThreshold: defaultSwitchThreshold,
		evaluateEvery:   defaultEvaluateEvery,
		metrics:         policy.NoopMetrics{},
	}
	c.children[StrategyLRU] = lru.New[K, V](capacity)
	c.children[StrategyLFU] = lfu.New[K, V](capacity)
	c.children[StrategyLFUAging] = lfu.New[K, V](capacity,
		lfu.WithMaxAverageFreq[K, V](agingMaxAverageFreq),
		lfu.WithAging[K, V](agingThreshold, agingFactor),
	)
	c.children[StrategyARC] = arc.New[K, V](capacity)
	for _, opt := range opts {
		opt(c)
	}
	if c.switchThreshold < 0 {
		panic("adaptive: switchThreshold must be >= 0")
	}
	if c.evaluateEvery < 1 {
		panic("adaptive: evaluateEvery must be >= 1")
	}
	return c
}

// Put dispatches the write to every child so they all track the same
// resident population.
func (c *Cache[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, child := range c.children {
		child.Put(key, value)
	}
}

// Get asks every child (shadow evaluation), records per-strategy hit
// totals, and returns the current strategy's answer. Every evaluateEvery
// calls the supervisor re-elects the best strategy.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var value V
	var hit bool
	for s := Strategy(0); s < numStrategies; s++ {
		v, ok := c.children[s].Get(key)
		if ok {
			c.hits[s]++
		}
		if s == c.current {
			value, hit = v, ok
		}
	}
	c.getCalls++
	if c.getCalls%c.evaluateEvery == 0 {
		c.evaluateLocked()
	}

	if hit {
		c.metrics.Hit()
	} else {
		c.metrics.Miss()
	}
	return value, hit
}

// GetOrZero is the by-value variant.
func (c *Cache[K, V]) GetOrZero(key K) V {
	v, _ := c.Get(key)
	return v
}

// CurrentStrategy returns the strategy currently serving Get results.
func (c *Cache[K, V]) CurrentStrategy() Strategy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// StrategyPerformance returns each strategy's cumulative hit-rate over all
// Get calls so far. Statistics are never reset, including on a switch.
func (c *Cache[K, V]) StrategyPerformance() map[Strategy]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	perf := make(map[Strategy]float64, numStrategies)
	for s := Strategy(0); s < numStrategies; s++ {
		perf[s] = c.hitRateLocked(s)
	}
	return perf
}

// evaluateLocked switches to the best strategy if it beats the current one
// by more than switchThreshold.
func (c *Cache[K, V]) evaluateLocked() {
	best := c.current
	bestRate := c.hitRateLocked(c.current)
	for s := Strategy(0); s < numStrategies; s++ {
		if r := c.hitRateLocked(s); r > bestRate {
			best, bestRate = s, r
		}
	}
	if best != c.current && bestRate-c.hitRateLocked(c.current) > c.switchThreshold {
		c.current = best
	}
}

func (c *Cache[K, V]) hitRateLocked(s Strategy) float64 {
	if c.getCalls == 0 {
		return 0
	}
	return float64(c.hits[s]) / float64(c.getCalls)
}

var _ policy.Cache[int, int] = (*Cache[int, int])(nil)
