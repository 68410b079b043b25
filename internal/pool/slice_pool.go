// Package pool provides sync.Pool backed buffers for the encoding and fitting hot paths.
package pool

import "sync"

var float64SlicePool = sync.Pool{
	New: func() any { return &[]float64{} },
}

// GetFloat64Slice retrieves a float64 slice of exactly size elements from the pool.
//
// The contents are unspecified. The caller must call the returned cleanup
// function (typically with defer) once it no longer references the slice.
//
// Example:
//
//	logOD, cleanup := pool.GetFloat64Slice(len(od))
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]float64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { float64SlicePool.Put(ptr) }
}
