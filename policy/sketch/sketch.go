// Package sketch implements a Count-Min Sketch: an approximate frequency
// counter used by W-TinyLFU's admission filter. It trades a bounded
// overestimate of true frequency for fixed depth x width space and O(depth)
// time per operation.
package sketch

import (
	"sync"

	"github.com/cachekit/polycache/internal/util"
)

const maxCounter = 255

// rowSeeds holds a fixed set of per-row seeds. depth is capped by len(rowSeeds);
// W-TinyLFU's default depth of 4 is well within range.
var rowSeeds = [...]uint64{
	0x9e3779b97f4a7c15,
	0xbf58476d1ce4e5b9,
	0x94d049bb133111eb,
	0xff51afd7ed558ccd,
	0xc4ceb9fe1a85ec53,
	0x2545f4914f6cdd1d,
	0x27d4eb2f165667c5,
	0x85ebca6b,
}

// CountMinSketch is a depth x width table of saturating 8-bit counters. Each
// row uses an independently seeded hash (via util.Mix64) rather than XORing
// one hash with distinct seeds, which would correlate collisions across
// rows. It is safe for concurrent use.
type CountMinSketch[K comparable] struct {
	mu       sync.Mutex
	width    int
	depth    int
	counters [][]uint8
}

// New constructs a sketch with the given width (columns) and depth (rows).
// depth must be between 1 and len(rowSeeds).
func New[K comparable](width, depth int) *CountMinSketch[K] {
	if width < 1 {
		panic("sketch: width must be >= 1")
	}
	if depth < 1 || depth > len(rowSeeds) {
		panic("sketch: depth out of range")
	}
	rows := make([][]uint8, depth)
	for i := range rows {
		rows[i] = make([]uint8, width)
	}
	return &CountMinSketch[K]{width: width, depth: depth, counters: rows}
}

// Increment bumps the estimated frequency of key by one, saturating at 255.
func (s *CountMinSketch[K]) Increment(key K) {
	h := util.Hash64(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.depth; i++ {
		idx := s.index(h, i)
		if s.counters[i][idx] < maxCounter {
			s.counters[i][idx]++
		}
	}
}

// Frequency returns the estimated access count of key: the minimum counter
// across all rows. It never underestimates the true count (until a decay).
func (s *CountMinSketch[K]) Frequency(key K) uint32 {
	h := util.Hash64(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	min := uint32(maxCounter) + 1
	for i := 0; i < s.depth; i++ {
		idx := s.index(h, i)
		if v := uint32(s.counters[i][idx]); v < min {
			min = v
		}
	}
	return min
}

// Decay halves every counter (integer division), rounding toward zero. It is
// called periodically so the sketch tracks a recency-weighted frequency
// rather than an all-time total.
func (s *CountMinSketch[K]) Decay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.depth; i++ {
		row := s.counters[i]
		for j := range row {
			row[j] /= 2
		}
	}
}

// Reset zeroes every counter.
func (s *CountMinSketch[K]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < s.depth; i++ {
		row := s.counters[i]
		for j := range row {
			row[j] = 0
		}
	}
}

func (s *CountMinSketch[K]) index(h uint64, row int) int {
	return int(util.Mix64(h, rowSeeds[row]) % uint64(s.width))
}
