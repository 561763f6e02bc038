// Package util contains internal helpers (hashing, sharding, padding)
// shared by the sharded cache and the frequency sketch.
package util

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// Hash64 hashes common key types using xxhash.
// Supported: string, []byte, [16|32|64]byte, all int/uint widths, uintptr, fmt.Stringer.
// For other key types, either convert the key to string or supply a custom hasher upstream.
// Panicking on unsupported types is deliberate to avoid silently poor hashing.
func Hash64[K comparable](k K) uint64 {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v)
	case []byte:
		return xxhash.Sum64(v)
	case [16]byte:
		return xxhash.Sum64(v[:])
	case [32]byte:
		return xxhash.Sum64(v[:])
	case [64]byte:
		return xxhash.Sum64(v[:])

	// Integer-like keys: hash the little-endian bytes of the value.
	case uint8:
		return hash64FromUint64(uint64(v))
	case uint16:
		return hash64FromUint64(uint64(v))
	case uint32:
		return hash64FromUint64(uint64(v))
	case uint64:
		return hash64FromUint64(v)
	case uint:
		return hash64FromUint64(uint64(v))
	case uintptr:
		return hash64FromUint64(uint64(v))
	case int8:
		return hash64FromUint64(uint64(uint8(v)))
	case int16:
		return hash64FromUint64(uint64(uint16(v)))
	case int32:
		return hash64FromUint64(uint64(uint32(v)))
	case int64:
		return hash64FromUint64(uint64(v))
	case int:
		return hash64FromUint64(uint64(v))

	// Fallback for pseudo-keys via String() (avoid if you can).
	case fmt.Stringer:
		return xxhash.Sum64String(v.String())
	default:
		panic(fmt.Sprintf("util.Hash64: unsupported key type %T; convert key to string or provide a custom hasher", k))
	}
}

// hash64FromUint64 hashes the 8 little-endian bytes of u without allocating.
func hash64FromUint64(u uint64) uint64 {
	var b [8]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(u)
		u >>= 8
	}
	return xxhash.Sum64(b[:])
}

// Mix64 re-hashes an already-hashed 64-bit value combined with a seed.
// Used by the Count-Min Sketch to derive depth independent row hashes from
// a single Hash64 call instead of XORing one hash with distinct seeds
// (which correlates collisions across rows).
func Mix64(h uint64, seed uint64) uint64 {
	var b [16]byte
	for i := 0; i < 8; i++ {
		b[i] = byte(h)
		h >>= 8
	}
	s := seed
	for i := 8; i < 16; i++ {
		b[i] = byte(s)
		s >>= 8
	}
	return xxhash.Sum64(b[:])
}
