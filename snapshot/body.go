package snapshot

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/odysseylab/odyssey/endian"
	"github.com/odysseylab/odyssey/internal/pool"
)

// bodyWriter appends body fields to a pooled buffer.
type bodyWriter struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	tmp    [binary.MaxVarintLen64]byte
}

func newBodyWriter(engine endian.EndianEngine) *bodyWriter {
	return &bodyWriter{buf: pool.GetSnapshotBuffer(), engine: engine}
}

func (w *bodyWriter) uvarint(v uint64) {
	n := binary.PutUvarint(w.tmp[:], v)
	w.buf.MustWrite(w.tmp[:n])
}

// varint writes v with zigzag encoding so small negatives stay short.
func (w *bodyWriter) varint(v int) {
	n := binary.PutVarint(w.tmp[:], int64(v))
	w.buf.MustWrite(w.tmp[:n])
}

func (w *bodyWriter) float(v float64) {
	w.buf.Grow(8)
	w.buf.B = w.engine.AppendUint64(w.buf.B, math.Float64bits(v))
}

func (w *bodyWriter) u8(v uint8) {
	w.buf.B = append(w.buf.B, v)
}

func (w *bodyWriter) str(s string) {
	w.uvarint(uint64(len(s)))
	w.buf.Grow(len(s))
	w.buf.B = append(w.buf.B, s...)
}

func (w *bodyWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// release returns the buffer to the pool. The writer must not be used after.
func (w *bodyWriter) release() {
	if w.buf != nil {
		pool.PutSnapshotBuffer(w.buf)
		w.buf = nil
	}
}

// bodyReader reads body fields. The first failure sticks: later reads return
// zero values and err reports the original problem.
type bodyReader struct {
	data   []byte
	off    int
	engine endian.EndianEngine
	err    error
}

func (r *bodyReader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s at offset %d", ErrCorrupted, fmt.Sprintf(format, args...), r.off)
	}
}

func (r *bodyReader) remaining() int {
	return len(r.data) - r.off
}

func (r *bodyReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}
	v, n := binary.Uvarint(r.data[r.off:])
	if n <= 0 {
		r.fail("bad uvarint")
		return 0
	}
	r.off += n

	return v
}

func (r *bodyReader) varint() int {
	if r.err != nil {
		return 0
	}
	v, n := binary.Varint(r.data[r.off:])
	if n <= 0 {
		r.fail("bad varint")
		return 0
	}
	if v < math.MinInt || v > math.MaxInt {
		r.fail("varint %d overflows int", v)
		return 0
	}
	r.off += n

	return int(v)
}

func (r *bodyReader) float() float64 {
	if r.err != nil {
		return 0
	}
	if r.remaining() < 8 {
		r.fail("truncated float")
		return 0
	}
	v := math.Float64frombits(r.engine.Uint64(r.data[r.off : r.off+8]))
	r.off += 8

	return v
}

func (r *bodyReader) u8() uint8 {
	if r.err != nil {
		return 0
	}
	if r.remaining() < 1 {
		r.fail("truncated byte")
		return 0
	}
	v := r.data[r.off]
	r.off++

	return v
}

func (r *bodyReader) str() string {
	n := r.uvarint()
	if r.err != nil {
		return ""
	}
	if n > uint64(r.remaining()) {
		r.fail("string length %d exceeds body", n)
		return ""
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)

	return s
}

// count reads a row count and rejects counts that cannot fit in the rest of
// the body, given each row needs at least minRowSize bytes.
func (r *bodyReader) count(minRowSize int) int {
	n := r.uvarint()
	if r.err != nil {
		return 0
	}
	if n > uint64(r.remaining()/minRowSize) {
		r.fail("row count %d exceeds body", n)
		return 0
	}

	return int(n)
}
