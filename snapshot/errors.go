package snapshot

import "errors"

var (
	// ErrInvalidHeaderSize is returned when the data is shorter than a header.
	ErrInvalidHeaderSize = errors.New("snapshot: data shorter than header")
	// ErrInvalidMagic is returned when the data does not start with "ODYS".
	ErrInvalidMagic = errors.New("snapshot: invalid magic number")
	// ErrUnsupportedVersion is returned for a format version this package cannot read.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported format version")
	// ErrReservedBits is returned when reserved header bits are set.
	ErrReservedBits = errors.New("snapshot: reserved header bits set")
	// ErrCorrupted is returned when the body is truncated or malformed.
	ErrCorrupted = errors.New("snapshot: corrupted body")
)
