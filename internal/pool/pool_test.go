package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFloat64Slice(t *testing.T) {
	s, cleanup := GetFloat64Slice(10)
	require.Len(t, s, 10)
	for i := range s {
		s[i] = float64(i)
	}
	cleanup()

	s2, cleanup2 := GetFloat64Slice(3)
	defer cleanup2()
	require.Len(t, s2, 3)

	s3, cleanup3 := GetFloat64Slice(1000)
	defer cleanup3()
	require.Len(t, s3, 1000)
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.MustWrite([]byte{1, 2, 3})
	bb.Grow(100)
	require.GreaterOrEqual(t, cap(bb.B)-bb.Len(), 100)
	require.Equal(t, []byte{1, 2, 3}, bb.Bytes())

	n, err := bb.Write([]byte{4})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, 4, bb.Len())
}

func TestByteBufferPool_DropsOversized(t *testing.T) {
	p := NewByteBufferPool(8, 16)
	bb := p.Get()
	bb.MustWrite(make([]byte, 1024))
	p.Put(bb)

	fresh := p.Get()
	require.Equal(t, 0, fresh.Len())

	p.Put(nil)
}

func TestSnapshotBuffer(t *testing.T) {
	bb := GetSnapshotBuffer()
	bb.MustWrite([]byte("ODYS"))
	require.Equal(t, 4, bb.Len())
	PutSnapshotBuffer(bb)

	again := GetSnapshotBuffer()
	require.Equal(t, 0, again.Len())
	PutSnapshotBuffer(again)
}
