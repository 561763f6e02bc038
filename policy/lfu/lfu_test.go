package lfu

import "testing"

// Capacity 2. put(1,a); put(2,b); get(1); get(1); put(3,c).
// Expect get(2) = miss (frequency 1 evicted), get(1)=a, get(3)=c.
func TestLFU_FrequencyOrderingScenario(t *testing.T) {
	t.Parallel()

	c := New[int, string](2)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Get(1)
	c.Get(1)
	c.Put(3, "c")

	if _, ok := c.Get(2); ok {
		t.Fatal("get(2) should miss: lowest frequency evicted")
	}
	if v, ok := c.Get(1); !ok || v != "a" {
		t.Fatalf("get(1) = %q, %v; want a, true", v, ok)
	}
	if v, ok := c.Get(3); !ok || v != "c" {
		t.Fatalf("get(3) = %q, %v; want c, true", v, ok)
	}
}

func TestLFU_TieBreakIsFIFO(t *testing.T) {
	t.Parallel()

	// All at frequency 1: oldest-inserted must be evicted first.
	c := New[int, string](2)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(3, "c") // evicts 1 (oldest at freq 1)

	if _, ok := c.Get(1); ok {
		t.Fatal("get(1) should miss: FIFO within a frequency bucket")
	}
	if _, ok := c.Get(2); !ok {
		t.Fatal("get(2) should hit")
	}
	if _, ok := c.Get(3); !ok {
		t.Fatal("get(3) should hit")
	}
}

func TestLFU_PutOverwriteCountsAsHit(t *testing.T) {
	t.Parallel()

	c := New[int, string](2)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Put(1, "a2") // overwrite: frequency bump, protects 1 from next eviction
	c.Put(3, "c")  // should evict 2, not 1

	if _, ok := c.Get(2); ok {
		t.Fatal("2 should have been evicted")
	}
	if v, _ := c.Get(1); v != "a2" {
		t.Fatalf("get(1) = %q, want a2", v)
	}
}

func TestLFU_CapacityZeroIsNoop(t *testing.T) {
	t.Parallel()

	c := New[string, int](0)
	c.Put("a", 1)
	if _, ok := c.Get("a"); ok {
		t.Fatal("capacity 0 must never hit")
	}
}

func TestLFU_NegativeCapacityPanics(t *testing.T) {
	t.Parallel()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for negative capacity")
		}
	}()
	New[string, int](-1)
}

func TestLFU_Purge(t *testing.T) {
	t.Parallel()

	c := New[int, string](4)
	c.Put(1, "a")
	c.Put(2, "b")
	c.Purge()
	if c.Len() != 0 {
		t.Fatalf("Len() after Purge = %d, want 0", c.Len())
	}
	if _, ok := c.Get(1); ok {
		t.Fatal("get(1) after Purge should miss")
	}
	c.Put(3, "c")
	if v, ok := c.Get(3); !ok || v != "c" {
		t.Fatalf("cache should work normally after Purge: got %q, %v", v, ok)
	}
}

func TestLFUAging_DecaysOldFrequencies(t *testing.T) {
	t.Parallel()

	c := New[int, string](3, WithAging[int, string](5, 0.5))
	c.Put(1, "a")
	for i := 0; i < 10; i++ {
		c.Get(1) // builds up frequency and triggers decay via agingThreshold=5
	}
	c.Put(2, "b")
	c.Put(3, "c")
	// Cache should still function and hold all three keys (capacity 3).
	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	// Without decay key 1 would sit at frequency 11. Decays fire at 5 and 7
	// (halved to 2 and 3), so it ends at 4.
	if f := c.m[1].Value.(*entry[int, string]).freq; f != 4 {
		t.Fatalf("freq(1) = %d, want 4 after two decays", f)
	}
}
