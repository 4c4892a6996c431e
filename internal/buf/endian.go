// Package buf contains helpers for bounds-checked, endian-safe decoding over
// raw hive buffers. Every reader degrades to a zero value instead of failing.
package buf

import "encoding/binary"

// U16LE reads a little-endian uint16 from b. Returns 0 when b is too short.
func U16LE(b []byte) uint16 {
	if len(b) < 2 {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

// U32LE reads a little-endian uint32 from b. Returns 0 when b is too short.
func U32LE(b []byte) uint32 {
	if len(b) < 4 {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I32LE reads a little-endian int32 from b. Returns 0 when b is too short.
func I32LE(b []byte) int32 {
	if len(b) < 4 {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b))
}

// U32At reads a little-endian uint32 at off, or 0 when off+4 exceeds len(b).
func U32At(b []byte, off int) uint32 {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0
	}
	return U32LE(s)
}

// U64At reads a little-endian uint64 at off, or 0 when off+8 exceeds len(b).
func U64At(b []byte, off int) uint64 {
	s, ok := Slice(b, off, 8)
	if !ok {
		return 0
	}
	return U64LE(s)
}
