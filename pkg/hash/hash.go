// Package hash identifies actions and cached outputs by cryptographic
// hash.
package hash

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// Hash is a 32-byte BLAKE3 digest identifying an element of a cache.
type Hash [32]byte

// String renders the hash as lower-case hexadecimal.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// Blake3 computes hashes. The zero value is not usable; create one with
// New.
type Blake3 struct {
	h *blake3.Hasher
}

// New creates a new hasher.
func New() *Blake3 {
	return &Blake3{h: blake3.New()}
}

// Update adds data to the hasher. Returns the receiver for convenience.
func (b *Blake3) Update(buf []byte) *Blake3 {
	_, _ = b.h.Write(buf)
	return b
}

// Finalize extracts the hash from the hasher.
func (b *Blake3) Finalize() Hash {
	var h Hash
	copy(h[:], b.h.Sum(nil))
	return h
}
