package trie

import (
	"encoding/binary"
	"math/bits"
)

// BranchNodeRecord is the compact on-disk representation of a Patricia-trie
// branch node: which children
// exist (StateMask), which live in the persisted tree (TreeMask), which
// carry materialized hashes (HashMask), the listed child hashes in
// ascending nibble order, and an optional subtree root hash.
type BranchNodeRecord struct {
	StateMask uint16
	TreeMask  uint16
	HashMask  uint16
	Hashes    [][32]byte
	RootHash  *[32]byte
}

// EncodeBranchNode lays out three big-endian 16-bit masks, a 1-byte count,
// count*32-byte child hashes, a 1-byte optional-root flag, and (if set)
// the 32-byte root hash.
func EncodeBranchNode(n BranchNodeRecord) []byte {
	if len(n.Hashes) != bits.OnesCount16(n.HashMask) {
		panic("trie: branch node hash count must equal popcount(HashMask)")
	}
	size := 6 + 1 + 32*len(n.Hashes) + 1
	if n.RootHash != nil {
		size += 32
	}
	out := make([]byte, size)
	binary.BigEndian.PutUint16(out[0:2], n.StateMask)
	binary.BigEndian.PutUint16(out[2:4], n.TreeMask)
	binary.BigEndian.PutUint16(out[4:6], n.HashMask)
	out[6] = byte(len(n.Hashes))
	off := 7
	for _, h := range n.Hashes {
		copy(out[off:off+32], h[:])
		off += 32
	}
	if n.RootHash != nil {
		out[off] = 1
		off++
		copy(out[off:off+32], n.RootHash[:])
		off += 32
	} else {
		out[off] = 0
		off++
	}
	return out[:off]
}

// DecodeBranchNode reverses EncodeBranchNode.
func DecodeBranchNode(b []byte) (BranchNodeRecord, error) {
	if len(b) < 7 {
		return BranchNodeRecord{}, errBadBranchNode
	}
	n := BranchNodeRecord{
		StateMask: binary.BigEndian.Uint16(b[0:2]),
		TreeMask:  binary.BigEndian.Uint16(b[2:4]),
		HashMask:  binary.BigEndian.Uint16(b[4:6]),
	}
	count := int(b[6])
	off := 7
	if len(b) < off+32*count+1 {
		return BranchNodeRecord{}, errBadBranchNode
	}
	if count != bits.OnesCount16(n.HashMask) {
		return BranchNodeRecord{}, errBadBranchNode
	}
	n.Hashes = make([][32]byte, count)
	for i := 0; i < count; i++ {
		copy(n.Hashes[i][:], b[off:off+32])
		off += 32
	}
	flag := b[off]
	off++
	switch flag {
	case 0:
		// no root hash
	case 1:
		if len(b) != off+32 {
			return BranchNodeRecord{}, errBadBranchNode
		}
		var root [32]byte
		copy(root[:], b[off:off+32])
		n.RootHash = &root
		off += 32
	default:
		return BranchNodeRecord{}, errBadBranchNode
	}
	if off != len(b) {
		return BranchNodeRecord{}, errBadBranchNode
	}
	return n, nil
}

var errBadBranchNode = errBranchNodeEncoding{}

type errBranchNodeEncoding struct{}

func (errBranchNodeEncoding) Error() string { return "invalid branch-node record encoding" }
