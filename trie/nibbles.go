// Package trie implements the trie-indexing layer: trie tables and cursors
// over the kv storage adapter, and the state-root calculator that drives a
// hash-builder trie walk against them.
package trie

import (
	"fmt"
)

// Nibbles is a sequence of 4-bit digits (0x0-0xF) identifying a position in
// a Merkle-Patricia trie. Length is 0..64.
type Nibbles []byte

// FromBytes expands a byte slice into its big-nibble-first digit sequence
// (high nibble, then low nibble, per byte).
func FromBytes(b []byte) Nibbles {
	out := make(Nibbles, 0, len(b)*2)
	for _, c := range b {
		out = append(out, c>>4, c&0x0F)
	}
	return out
}

// EncodeNibbles emits one nibble-byte per digit (0x0-0xF), no length prefix:
// a length byte placed ahead of the run does not preserve lexicographic
// order in general (e.g. {3,2} would encode to 02 03 02 and {1,9,9} to 03
// 01 09 09, ranking {3,2} first even though {1,9,9} < {3,2} on the leading
// nibble). One nibble per byte and nothing else keeps encode order
// identical to nibble order, the same way Hash32/Uint64BE need no length
// byte either; decode recovers the count from the slice it's handed.
func EncodeNibbles(n Nibbles) []byte {
	if len(n) > 64 {
		panic(fmt.Sprintf("trie: nibble path length %d exceeds 64", len(n)))
	}
	out := make([]byte, len(n))
	copy(out, n)
	return out
}

// DecodeNibbles reverses EncodeNibbles: b holds one nibble per byte.
func DecodeNibbles(b []byte) (Nibbles, error) {
	if len(b) > 64 {
		return nil, errBadNibbleEncoding
	}
	out := make(Nibbles, len(b))
	copy(out, b)
	return out, nil
}

// EncodeNibblesFixed64 encodes a full 64-nibble path without a length byte,
// for use as a dup-sort sub-key where the path is always full-length.
func EncodeNibblesFixed64(n Nibbles) []byte {
	if len(n) != 64 {
		panic(fmt.Sprintf("trie: fixed nibble path must be exactly 64 nibbles, got %d", len(n)))
	}
	out := make([]byte, 64)
	copy(out, n)
	return out
}

// DecodeNibblesFixed64 reverses EncodeNibblesFixed64.
func DecodeNibblesFixed64(b []byte) (Nibbles, error) {
	if len(b) != 64 {
		return nil, errBadNibbleEncoding
	}
	out := make(Nibbles, 64)
	copy(out, b)
	return out, nil
}

// HasPrefix reports whether n starts with prefix.
func (n Nibbles) HasPrefix(prefix Nibbles) bool {
	if len(prefix) > len(n) {
		return false
	}
	for i := range prefix {
		if n[i] != prefix[i] {
			return false
		}
	}
	return true
}

var errBadNibbleEncoding = errNibbleEncoding{}

type errNibbleEncoding struct{}

func (errNibbleEncoding) Error() string { return "invalid nibble path encoding" }
