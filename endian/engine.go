// Package endian selects the byte order of snapshot encodings.
//
// EndianEngine joins binary.ByteOrder and binary.AppendByteOrder so encoders
// can append fixed-width values without temporary buffers:
//
//	engine := endian.GetLittleEndianEngine()
//	buf = engine.AppendUint64(buf, math.Float64bits(mu))
//
// Snapshots default to little-endian and record the byte order in their
// header, so a snapshot written on any host can be read on any other.
//
// The returned engines are stateless and safe for concurrent use.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary.
//
// binary.LittleEndian and binary.BigEndian satisfy it.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() EndianEngine {
	// 0x0100 is stored as 00 01 on little-endian hosts.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// IsBigEndian reports whether engine writes the most significant byte first.
func IsBigEndian(engine EndianEngine) bool {
	return engine == EndianEngine(binary.BigEndian)
}

// FromBigEndianFlag returns the engine matching a stored byte-order flag.
func FromBigEndianFlag(bigEndian bool) EndianEngine {
	if bigEndian {
		return GetBigEndianEngine()
	}

	return GetLittleEndianEngine()
}
