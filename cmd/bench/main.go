// Command bench runs a synthetic Zipf workload against a chosen eviction
// policy and exposes an optional pprof endpoint and a Prometheus metrics
// endpoint.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	_ "net/http/pprof" // registers /debug/pprof/* on DefaultServeMux
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/cachekit/polycache/internal/util"
	pmet "github.com/cachekit/polycache/metrics/prom"
	"github.com/cachekit/polycache/policy"
	"github.com/cachekit/polycache/policy/adaptive"
	"github.com/cachekit/polycache/policy/arc"
	"github.com/cachekit/polycache/policy/lfu"
	"github.com/cachekit/polycache/policy/lru"
	"github.com/cachekit/polycache/policy/lruk"
	"github.com/cachekit/polycache/policy/sharded"
	"github.com/cachekit/polycache/policy/wtinylfu"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// ---- Flags ----
	var (
		capacity   = flag.Int("cap", 100_000, "cache capacity (entries)")
		shards     = flag.Int("shards", 0, "shard count, sharded policy only (0=auto)")
		policyName = flag.String("policy", "lru", "eviction policy: lru | lru-k | sharded | lfu | lfu-aging | arc | wtinylfu | adaptive")

		workers  = flag.Int("workers", 2*runtime.GOMAXPROCS(0), "number of worker goroutines")
		duration = flag.Duration("duration", 10*time.Second, "benchmark duration")
		readPct  = flag.Int("reads", 80, "read percentage [0..100]")

		keys    = flag.Int("keys", 1_000_000, "keyspace size")
		zipfS   = flag.Float64("zipf_s", 1.1, "Zipf s > 1 (skew)")
		zipfV   = flag.Float64("zipf_v", 1.0, "Zipf v")
		seed    = flag.Int64("seed", time.Now().UnixNano(), "random seed")
		preload = flag.Int("preload", 0, "preload entries (0 = cap/2)")

		pprofAddr   = flag.String("pprof", "", "serve pprof at addr (e.g. :6060); empty = disabled")
		metricsAddr = flag.String("http", ":8080", "serve Prometheus metrics at addr")
	)
	flag.Parse()

	// ---- pprof server (on DefaultServeMux) ----
	if *pprofAddr != "" {
		go func() {
			log.Printf("pprof: serving at %s", *pprofAddr)
			log.Println(http.ListenAndServe(*pprofAddr, nil))
		}()
	}

	// ---- Prometheus metrics (on DefaultServeMux) ----
	metrics := pmet.New(nil, "polycache", "bench", nil)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Printf("metrics: serving at %s", *metricsAddr)
		log.Println(http.ListenAndServe(*metricsAddr, nil))
	}()

	// ---- Build cache ----
	var c policy.Cache[string, string]
	switch *policyName {
	case "lru":
		c = lru.New[string, string](*capacity, lru.WithMetrics[string, string](metrics))
	case "lru-k":
		c = lruk.New[string, string](*capacity, lruk.WithMetrics[string, string](metrics))
	case "sharded":
		n := *shards
		if n <= 0 {
			n = util.ReasonableShardCount()
		}
		c = sharded.New[string, string](*capacity, n)
	case "lfu":
		c = lfu.New[string, string](*capacity, lfu.WithMetrics[string, string](metrics))
	case "lfu-aging":
		c = lfu.New[string, string](*capacity,
			lfu.WithMetrics[string, string](metrics),
			lfu.WithAging[string, string](10_000, 0.8))
	case "arc":
		c = arc.New[string, string](*capacity)
	case "wtinylfu":
		c = wtinylfu.New[string, string](*capacity)
	case "adaptive":
		c = adaptive.New[string, string](*capacity, adaptive.WithMetrics[string, string](metrics))
	default:
		log.Fatalf("unknown policy: %q", *policyName)
	}

	// ---- Preload half capacity to get a realistic hit-rate ----
	pl := *preload
	if pl == 0 {
		pl = *capacity / 2
	}
	for i := 0; i < pl; i++ {
		k := "k:" + strconv.Itoa(i)
		c.Put(k, "v"+strconv.Itoa(i))
	}

	// ---- Snapshot flags for goroutines ----
	readPctVal := *readPct
	keysMax := uint64(*keys - 1)
	seedBase := *seed
	zipfSVal := *zipfS
	zipfVVal := *zipfV
	workersN := *workers
	if workersN <= 0 {
		workersN = 1
	}

	// ---- Load generation ----
	// Padded counters: the workers hammer these from every core.
	var reads, writes, hits, misses, total util.PaddedAtomicUint64
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(workersN)
	for w := 0; w < workersN; w++ {
		go func(id int) {
			defer wg.Done()

			// Each worker gets its own RNG + Zipf (rand.Rand is NOT goroutine-safe).
			localR := rand.New(rand.NewSource(seedBase + int64(id)*9973))
			localZipf := rand.NewZipf(localR, zipfSVal, zipfVVal, keysMax)

			keyByZipf := func() string {
				return "k:" + strconv.FormatUint(localZipf.Uint64(), 10)
			}

			for {
				select {
				case <-ctx.Done():
					return
				default:
				}

				total.Add(1)
				if int(localR.Int31n(100)) < readPctVal {
					reads.Add(1)
					if _, ok := c.Get(keyByZipf()); ok {
						hits.Add(1)
					} else {
						misses.Add(1)
					}
				} else {
					writes.Add(1)
					k := keyByZipf()
					c.Put(k, "v"+strconv.Itoa(localR.Int()))
				}
			}
		}(w)
	}
	wg.Wait()
	elapsed := time.Since(start)

	// ---- Report ----
	ops := total.Load()
	readsN := reads.Load()
	writesN := writes.Load()
	hitsN := hits.Load()
	missesN := misses.Load()

	hitRate := 0.0
	if readsN > 0 {
		hitRate = float64(hitsN) / float64(readsN) * 100
	}

	fmt.Printf("policy=%s cap=%d workers=%d keys=%d dur=%v seed=%d\n",
		*policyName, *capacity, workersN, *keys, elapsed, seedBase)
	fmt.Printf("ops=%d (%.0f ops/s)  reads=%d  writes=%d\n",
		ops, float64(ops)/elapsed.Seconds(), readsN, writesN)
	fmt.Printf("hits=%d  misses=%d  hit-rate=%.2f%%\n", hitsN, missesN, hitRate)

	if a, ok := c.(*adaptive.Cache[string, string]); ok {
		fmt.Printf("adaptive: current=%v\n", a.CurrentStrategy())
		for s, r := range a.StrategyPerformance() {
			fmt.Printf("adaptive: %-10v hit-rate=%.2f%%\n", s, r*100)
		}
	}
}
