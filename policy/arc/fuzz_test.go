//go:build go1.18

package arc

import "testing"

// Fuzz Put/Get round-trips through both ARC parts: a fresh key lands in the
// LRU-part, a re-read key shadow-promotes into the LFU-part, and neither
// path may panic or lose the freshest value.
func FuzzARC_PutGet(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := New[string, string](8)

		c.Put(k, v)
		if got, ok := c.Get(k); !ok || got != v {
			t.Fatalf("after Put/Get: want %q, got %q ok=%v", v, got, ok)
		}

		// The first Get already promoted into the LFU-part; value must survive.
		if got, ok := c.Get(k); !ok || got != v {
			t.Fatalf("after promotion: want %q, got %q ok=%v", v, got, ok)
		}

		// Overwrite must update every resident copy.
		c.Put(k, v+"*")
		if got, ok := c.Get(k); !ok || got != v+"*" {
			t.Fatalf("after overwrite: want %q, got %q ok=%v", v+"*", got, ok)
		}
	})
}
