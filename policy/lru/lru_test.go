package lru

import (
	"strconv"
	"testing"

	"golang.org/x/sync/errgroup"
)

// Capacity 3: put(1,a); put(2,b); put(3,c); get(1); put(4,d).
// Expect get(2)=miss, get(1)=a, get(3)=c, get(4)=d.
func TestLRU_EvictionOrder(t *testing.T) {
	t.Parallel()

	c := New[int, string](3)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c")
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("get(1) = %q, %v; want a, true", v, ok)
	}
	c.Put(4, "d")

	if _, ok := c.Get(2); ok {
		t.Fatal("get(2) should miss after eviction")
	}
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("get(1) = %q, %v; want a, true", v, ok)
	}
	if v, ok := c.Get(3); !ok || v != "c" {
		t.Fatalf("get(3) = %q, %v; want c, true", v, ok)
	}
	if v, ok := c.Get(4); !ok || v != "d" {
		t.Fatalf("get(4) = %q, %v; want d, true", v, ok)
	}
}

// put(k1)...put(kn) with n > capacity and all keys distinct: get(k_i) hits
// iff i > n - capacity. The loop below numbers keys from 0, so key i hits
// iff i >= n - capacity.
func TestLRU_TailEvictionInvariant(t *testing.T) {
	t.Parallel()

	const capacity = 10
	const n = 37
	c := New[int, int](capacity)
	for i := 0; i < n; i++ {
		c.Put(i, i*i)
	}
	for i := 0; i < n; i++ {
		_, ok := c.Get(i)
		want := i >= n-capacity
		if ok != want {
			t.Fatalf("get(%d) hit=%v, want %v", i, ok, want)
		}
	}
}

func TestLRU_CapacityZeroIsNoop(t *testing.T) {
	t.Parallel()

	c := New[string, int](0)
	c.Put("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatal("capacity 0 must never hit")
	}
	if c.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", c.Len())
	}
}

func TestLRU_NegativeCapacityPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative capacity")
		}
	}()
	New[string, int](-1)
}

func TestLRU_RemoveAndOldestKey(t *testing.T) {
	t.Parallel()

	c := New[string, int](4)
	if got := c.OldestKey(); got != "" {
		t.Fatalf("OldestKey() on empty cache = %q, want zero value", got)
	}
	c.Put("a", 1)
	c.Put("b", 2)
	if got := c.OldestKey(); got != "a" {
		t.Fatalf("OldestKey() = %q, want a", got)
	}
	if !c.Remove("a") {
		t.Fatal("Remove(a) should report true")
	}
	if c.Remove("a") {
		t.Fatal("Remove(a) twice should report false")
	}
	if got := c.OldestKey(); got != "b" {
		t.Fatalf("OldestKey() = %q, want b", got)
	}
}

func TestLRU_PutOverwriteUpdatesValueAndRecency(t *testing.T) {
	t.Parallel()

	c := New[int, string](2)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(1, "a2") // overwrite + promote 1
	c.Put(3, "c")  // should evict 2, not 1

	if _, ok := c.Get(2); ok {
		t.Fatal("2 should have been evicted")
	}
	if v, _ := c.Get(1); v != "a2" {
		t.Fatalf("get(1) = %q, want a2", v)
	}
}

// Round-trip: a single put/get on an empty cache always hits.
func TestLRU_RoundTrip(t *testing.T) {
	t.Parallel()

	c := New[string, int](1)
	c.Put("k", 42)
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Fatalf("get(k) = %d, %v; want 42, true", v, ok)
	}
}

func TestLRU_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[string, int](256)
	var g errgroup.Group
	for w := 0; w < 16; w++ {
		w := w
		g.Go(func() error {
			for i := 0; i < 2000; i++ {
				k := strconv.Itoa((w*2000 + i) % 512)
				c.Put(k, i)
				c.Get(k)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if c.Len() > 256 {
		t.Fatalf("Len() = %d exceeds capacity 256", c.Len())
	}
}
