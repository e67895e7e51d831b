// Package kv implements the typed transactional storage adapter: codec
// layer, dup-sort helper, table registry, engine wrapper, transactions, and
// cursors (C1-C6).
package kv

import (
	"encoding/binary"
	"fmt"
)

// Hash32 is the 32-byte hash type used for hashed addresses, hashed storage
// slots, node hashes, and bytecode hashes. Its encoding is a raw pass-through
// (already lexicographically comparable byte-for-byte).
type Hash32 [32]byte

// EncodeHash32 returns the 32 raw bytes of h.
func EncodeHash32(h Hash32) []byte {
	out := make([]byte, 32)
	copy(out, h[:])
	return out
}

// DecodeHash32 parses 32 raw bytes into a Hash32.
func DecodeHash32(b []byte) (Hash32, error) {
	var h Hash32
	if len(b) != 32 {
		return h, &DecodeError{Type: "Hash32", Err: fmt.Errorf("want 32 bytes, got %d", len(b))}
	}
	copy(h[:], b)
	return h, nil
}

// Uint64BE is a big-endian encoded unsigned 64-bit key, used for block
// numbers and sequence counters. Big-endian keeps encode order-preserving.
type Uint64BE uint64

// EncodeUint64BE returns the 8-byte big-endian encoding of v.
func EncodeUint64BE(v Uint64BE) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(v))
	return out
}

// DecodeUint64BE parses an 8-byte big-endian encoding.
func DecodeUint64BE(b []byte) (Uint64BE, error) {
	if len(b) != 8 {
		return 0, &DecodeError{Type: "Uint64BE", Err: fmt.Errorf("want 8 bytes, got %d", len(b))}
	}
	return Uint64BE(binary.BigEndian.Uint64(b)), nil
}

// RawBytes is an opaque byte-string value type whose Compress/Decompress are
// an identity pass-through (used for the raw-trie table and storage slot
// values, where no further structure is imposed at the codec layer).
type RawBytes []byte

// CompressRawBytes returns v unchanged (copied, so callers may reuse v).
func CompressRawBytes(v RawBytes) []byte {
	out := make([]byte, len(v))
	copy(out, v)
	return out
}

// DecompressRawBytes returns b unchanged (copied).
func DecompressRawBytes(b []byte) (RawBytes, error) {
	out := make([]byte, len(b))
	copy(out, b)
	return RawBytes(out), nil
}
