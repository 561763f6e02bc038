// Package policy defines the contract shared by a family of in-memory
// eviction policies, implemented in its subpackages.
//
// Design
//
//   - Contract: Cache[K, V] is a small capability interface (Put, Get,
//     GetOrZero). Each policy implements it and adds its own extras
//     (Remove, Len, OldestKey, Purge, CurrentStrategy, ...) as plain
//     methods on the concrete type. There is no inheritance hierarchy.
//
//   - Policies: lru (recency), lruk (K-access admission over LRU),
//     sharded (hash-partitioned LRU), lfu (frequency buckets, with an
//     aging variant), arc (self-tuning recency/frequency split with
//     ghost lists), wtinylfu (window LRU + main LRU behind a Count-Min
//     Sketch admission filter), adaptive (shadow-runs four policies and
//     serves from the current hit-rate winner).
//
//   - Concurrency: each cache instance owns its lock(s). lru, lfu and
//     adaptive run every operation under one lock and are linearizable
//     per instance; sharded is linearizable per shard. lruk, arc and
//     wtinylfu lock each internal part separately, so one of their
//     operations is not atomic as a whole. No internal goroutines, no
//     timeouts.
//
//   - Capacity: always an entry count. Capacity 0 is a legal degenerate
//     case where Put is a no-op and Get always misses. A negative
//     capacity panics at New; the LFU tuning values and the wtinylfu
//     window ratio are not range-checked.
//
//   - Metrics: the lru, lruk, lfu and adaptive constructors accept
//     WithMetrics to receive Hit/Miss/Evict/Size signals; arc, wtinylfu
//     and sharded take no metrics sink. NoopMetrics is the default; the
//     metrics/prom package exports them to Prometheus.
package policy
