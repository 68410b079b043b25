package snapshot

import (
	"fmt"

	"github.com/odysseylab/odyssey/compress"
	"github.com/odysseylab/odyssey/endian"
)

const (
	// HeaderSize is the fixed size of the snapshot header in bytes.
	HeaderSize = 8
	// Version is the format version written by Encode.
	Version uint8 = 1

	// BigEndianMask marks a big-endian body (bit 0 of the flags byte).
	BigEndianMask uint8 = 0x01
	// ReservedFlagsMask covers the flag bits that must be zero.
	ReservedFlagsMask uint8 = 0xFE
)

var magic = [4]byte{'O', 'D', 'Y', 'S'}

// Header is the fixed-size prefix of every snapshot.
type Header struct {
	Version     uint8
	Flags       uint8
	Compression compress.CompressionType
}

// IsBigEndian reports whether the body was written big-endian.
func (h Header) IsBigEndian() bool {
	return h.Flags&BigEndianMask != 0
}

// Engine returns the byte order of the body.
func (h Header) Engine() endian.EndianEngine {
	return endian.FromBigEndianFlag(h.IsBigEndian())
}

// Bytes serializes the header.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	copy(b[0:4], magic[:])
	b[4] = h.Version
	b[5] = h.Flags
	b[6] = uint8(h.Compression)

	return b
}

// ParseHeader parses and validates the header at the start of data.
//
// Parameters:
//   - data: Snapshot bytes (at least HeaderSize long)
//
// Returns:
//   - Header: Parsed header
//   - error: ErrInvalidHeaderSize, ErrInvalidMagic, ErrUnsupportedVersion,
//     ErrReservedBits or an unknown codec error
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrInvalidHeaderSize
	}
	if [4]byte(data[0:4]) != magic {
		return Header{}, ErrInvalidMagic
	}

	h := Header{
		Version:     data[4],
		Flags:       data[5],
		Compression: compress.CompressionType(data[6]),
	}
	if h.Version != Version {
		return Header{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	if h.Flags&ReservedFlagsMask != 0 || data[7] != 0 {
		return Header{}, ErrReservedBits
	}
	if _, err := compress.GetCodec(h.Compression); err != nil {
		return Header{}, fmt.Errorf("snapshot header: %w", err)
	}

	return h, nil
}
