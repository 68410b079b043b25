// Package hash builds xxHash64 content keys used to memoize analyses.
package hash

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ID computes the xxHash64 of the given string.
func ID(data string) uint64 {
	return xxhash.Sum64String(data)
}

// Builder accumulates typed fields into a single xxHash64 digest.
//
// Every field is written with a fixed-width or length-prefixed layout so that
// adjacent fields cannot alias each other ("ab"+"c" and "a"+"bc" differ).
type Builder struct {
	d   *xxhash.Digest
	buf [8]byte
}

// NewBuilder creates an empty key builder.
func NewBuilder() *Builder {
	return &Builder{d: xxhash.New()}
}

// Uint64 writes v as 8 little-endian bytes.
func (b *Builder) Uint64(v uint64) *Builder {
	binary.LittleEndian.PutUint64(b.buf[:], v)
	_, _ = b.d.Write(b.buf[:])

	return b
}

// Int writes v as a 64-bit integer.
func (b *Builder) Int(v int) *Builder {
	return b.Uint64(uint64(int64(v))) //nolint:gosec
}

// Float64 writes the IEEE-754 bits of v. All NaN payloads hash identically.
func (b *Builder) Float64(v float64) *Builder {
	if math.IsNaN(v) {
		return b.Uint64(0x7ff8000000000001)
	}

	return b.Uint64(math.Float64bits(v))
}

// Bool writes v as a single byte.
func (b *Builder) Bool(v bool) *Builder {
	if v {
		_, _ = b.d.Write([]byte{1})
	} else {
		_, _ = b.d.Write([]byte{0})
	}

	return b
}

// String writes a length-prefixed string.
func (b *Builder) String(s string) *Builder {
	b.Uint64(uint64(len(s)))
	_, _ = b.d.WriteString(s)

	return b
}

// Sum returns the current digest.
func (b *Builder) Sum() uint64 {
	return b.d.Sum64()
}
