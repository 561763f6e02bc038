// Package sharded implements a hash-partitioned LRU: sliceNum independent
// lru.Cache instances, each with its own lock, routed by hash(key) mod
// sliceNum. Trading a small capacity-balancing inaccuracy for independent
// locks reduces contention under concurrent access, at the cost of no
// cross-shard coordination (an insertion in one shard never evicts from
// another).
package sharded

import (
	"github.com/cachekit/polycache/internal/util"
	"github.com/cachekit/polycache/policy"
	"github.com/cachekit/polycache/policy/lru"
)

// Cache is a sliceNum-way sharded LRU.
type Cache[K comparable, V any] struct {
	shards []*lru.Cache[K, V]
}

// New constructs a Sharded LRU with totalCapacity entries split evenly
// (ceil) across sliceNum shards. sliceNum must be >= 1.
func New[K comparable, V any](totalCapacity, sliceNum int) *Cache[K, V] {
	if totalCapacity < 0 {
		panic("sharded: totalCapacity must be >= 0")
	}
	if sliceNum < 1 {
		panic("sharded: sliceNum must be >= 1")
	}
	perShard := (totalCapacity + sliceNum - 1) / sliceNum
	shards := make([]*lru.Cache[K, V], sliceNum)
	for i := range shards {
		shards[i] = lru.New[K, V](perShard)
	}
	return &Cache[K, V]{shards: shards}
}

// Put inserts or overwrites key with value in its shard.
func (c *Cache[K, V]) Put(key K, value V) {
	c.shardFor(key).Put(key, value)
}

// Get is the by-reference variant, served by the key's shard.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.shardFor(key).Get(key)
}

// GetOrZero is the by-value variant.
func (c *Cache[K, V]) GetOrZero(key K) V {
	v, _ := c.Get(key)
	return v
}

// Remove deletes key from its shard if present.
func (c *Cache[K, V]) Remove(key K) bool {
	return c.shardFor(key).Remove(key)
}

// Len returns the total number of resident entries across all shards.
func (c *Cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.Len()
	}
	return total
}

func (c *Cache[K, V]) shardFor(key K) *lru.Cache[K, V] {
	idx := util.ShardIndex(util.Hash64(key), len(c.shards))
	return c.shards[idx]
}

var _ policy.Cache[int, int] = (*Cache[int, int])(nil)
