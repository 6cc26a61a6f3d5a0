package hash

import (
	"encoding/binary"
)

// Convenient methods for writing values. In contrast with Go's hash.Hash
// interface these are stable across platforms and versions, and each type
// gets its own method so that changing a field's type surfaces as a
// compile error rather than a silently different digest.
//
// Variable-length values are length-prefixed so that adjacent fields
// cannot shift bytes into each other.

// PutBool writes a bool as a single byte.
func (b *Blake3) PutBool(value bool) *Blake3 {
	if value {
		return b.PutU8(1)
	}
	return b.PutU8(0)
}

// PutU8 writes a single byte.
func (b *Blake3) PutU8(value uint8) *Blake3 {
	return b.Update([]byte{value})
}

// PutU64 writes a little-endian uint64.
func (b *Blake3) PutU64(value uint64) *Blake3 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], value)
	return b.Update(buf[:])
}

// PutLen writes a length.
func (b *Blake3) PutLen(value int) *Blake3 {
	return b.PutU64(uint64(value))
}

// PutBytes writes a length-prefixed byte string.
func (b *Blake3) PutBytes(value []byte) *Blake3 {
	return b.PutLen(len(value)).Update(value)
}

// PutString writes a length-prefixed string.
func (b *Blake3) PutString(value string) *Blake3 {
	return b.PutBytes([]byte(value))
}

// PutStrings writes a length-prefixed sequence of strings.
func (b *Blake3) PutStrings(values []string) *Blake3 {
	b.PutLen(len(values))
	for _, v := range values {
		b.PutString(v)
	}
	return b
}

// PutHash writes a fixed-size digest.
func (b *Blake3) PutHash(h Hash) *Blake3 {
	return b.Update(h[:])
}
