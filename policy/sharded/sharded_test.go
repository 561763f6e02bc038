package sharded

import (
	"strconv"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestSharded_RoundTrip(t *testing.T) {
	t.Parallel()

	c := New[string, int](16, 4)
	c.Put("k", 42)
	if v, ok := c.Get("k"); !ok || v != 42 {
		t.Fatalf("get(k) = %d, %v; want 42, true", v, ok)
	}
}

func TestSharded_PerShardCapacitySplit(t *testing.T) {
	t.Parallel()

	// totalCapacity 10 over 4 shards -> perShard = ceil(10/4) = 3, total resident <= 12.
	c := New[int, int](10, 4)
	for i := 0; i < 100; i++ {
		c.Put(i, i)
	}
	if got := c.Len(); got > 12 {
		t.Fatalf("Len() = %d, want <= 12", got)
	}
}

func TestSharded_NegativeCapacityPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative capacity")
		}
	}()
	New[string, int](-1, 4)
}

func TestSharded_ZeroSliceNumPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for sliceNum < 1")
		}
	}()
	New[string, int](16, 0)
}

func TestSharded_RemoveAndLen(t *testing.T) {
	t.Parallel()

	c := New[string, int](16, 4)
	c.Put("a", 1)
	c.Put("b", 2)
	if !c.Remove("a") {
		t.Fatal("Remove(a) should report true")
	}
	if c.Remove("a") {
		t.Fatal("Remove(a) twice should report false")
	}
	if got := c.Len(); got != 1 {
		t.Fatalf("Len() = %d, want 1", got)
	}
}

// Keys routed to different shards never interfere: flooding one shard must
// not evict a resident of another.
func TestSharded_ShardIsolation(t *testing.T) {
	t.Parallel()

	c := New[int, int](8, 4) // perShard = 2
	c.Put(0, 100)
	home := c.shardFor(0)

	flooded := 0
	for k := 1; flooded < 50; k++ {
		if c.shardFor(k) == home {
			continue
		}
		c.Put(k, k)
		flooded++
	}

	if v, ok := c.Get(0); !ok || v != 100 {
		t.Fatalf("get(0) = %d, %v; want 100, true (other shards must not evict it)", v, ok)
	}
}

func TestSharded_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := New[string, int](256, 8)
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
}
