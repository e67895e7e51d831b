package trie

import (
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// emptyRLPString is the RLP encoding of the empty string, whose Keccak256
// is the canonical empty-trie root.
var emptyRLPString = []byte{0x80}

// EmptyRoot is Keccak256(rlp.EncodeToBytes([]byte{})), the root of an
// empty trie.
func EmptyRoot() [32]byte {
	return crypto.Keccak256Hash(emptyRLPString)
}

// hashLeaf pairs a full 64-nibble path with its already RLP-encoded leaf
// value, the unit the hash builder sorts and partitions.
type hashLeaf struct {
	path  Nibbles
	value []byte
}

// branchUpdate records one branch node produced by the walk, identified by
// the nibble-path prefix it lives at, for the caller to persist.
type branchUpdate struct {
	prefix  Nibbles
	record  BranchNodeRecord
	rawHash [32]byte
	rawEnc  []byte
}

// buildHashTrie runs a standard Merkle-Patricia hash builder over entries
// (must already be sorted by path) and returns the root hash plus every
// branch node it constructed (collect may be nil to skip collection, for
// the read-only CalculateStateRoot entry point).
func buildHashTrie(entries []hashLeaf, collect *[]branchUpdate) [32]byte {
	if len(entries) == 0 {
		return EmptyRoot()
	}
	enc := buildNode(entries, 0, collect)
	return crypto.Keccak256Hash(enc)
}

func buildNode(entries []hashLeaf, depth int, collect *[]branchUpdate) []byte {
	if len(entries) == 1 {
		return encodeLeaf(entries[0].path[depth:], entries[0].value)
	}
	common := commonPrefixLen(entries, depth)
	if common > 0 {
		childEnc := buildBranch(entries, depth+common, collect)
		return encodeExtension(entries[0].path[depth:depth+common], childEnc)
	}
	return buildBranch(entries, depth, collect)
}

func buildBranch(entries []hashLeaf, depth int, collect *[]branchUpdate) []byte {
	var groups [16][]hashLeaf
	for _, e := range entries {
		n := e.path[depth]
		groups[n] = append(groups[n], e)
	}

	children := make([][]byte, 17)
	var stateMask, hashMask uint16
	var hashes [][32]byte
	for i := 0; i < 16; i++ {
		if len(groups[i]) == 0 {
			children[i] = []byte{}
			continue
		}
		stateMask |= 1 << uint(i)
		childEnc := buildNode(groups[i], depth+1, collect)
		ref := childRef(childEnc)
		children[i] = ref
		if len(ref) == 32 {
			hashMask |= 1 << uint(i)
			var h [32]byte
			copy(h[:], ref)
			hashes = append(hashes, h)
		}
	}
	children[16] = []byte{}

	enc := rlpList(children)
	if collect != nil {
		*collect = append(*collect, branchUpdate{
			prefix: append(Nibbles(nil), entries[0].path[:depth]...),
			record: BranchNodeRecord{
				StateMask: stateMask,
				TreeMask:  stateMask,
				HashMask:  hashMask,
				Hashes:    hashes,
			},
			rawHash: crypto.Keccak256Hash(enc),
			rawEnc:  enc,
		})
	}
	return enc
}

func commonPrefixLen(entries []hashLeaf, depth int) int {
	first := entries[0].path
	max := len(first) - depth
	for _, e := range entries[1:] {
		if l := len(e.path) - depth; l < max {
			max = l
		}
	}
	n := 0
	for ; n < max; n++ {
		v := first[depth+n]
		same := true
		for _, e := range entries[1:] {
			if e.path[depth+n] != v {
				same = false
				break
			}
		}
		if !same {
			break
		}
	}
	return n
}

func encodeLeaf(remaining Nibbles, value []byte) []byte {
	return rlpList([][]byte{compactEncode(remaining, true), value})
}

func encodeExtension(shared Nibbles, childEnc []byte) []byte {
	return rlpList([][]byte{compactEncode(shared, false), childRef(childEnc)})
}

// childRef returns the reference an MPT parent stores for a child node's
// encoding: the raw encoding itself when short enough to embed, else the
// node's Keccak256 hash.
func childRef(enc []byte) []byte {
	if len(enc) < 32 {
		return enc
	}
	h := crypto.Keccak256(enc)
	return h
}

// compactEncode applies Ethereum's hex-prefix encoding to a nibble path,
// folding the leaf/extension distinction and odd-length flag into the
// high nibble of the first byte.
func compactEncode(nibbles Nibbles, leaf bool) []byte {
	var flag byte
	if leaf {
		flag = 2
	}
	odd := len(nibbles)%2 == 1
	if odd {
		flag |= 1
	}
	out := make([]byte, 0, len(nibbles)/2+1)
	rest := nibbles
	if odd {
		out = append(out, flag<<4|nibbles[0])
		rest = nibbles[1:]
	} else {
		out = append(out, flag<<4)
	}
	for i := 0; i < len(rest); i += 2 {
		out = append(out, rest[i]<<4|rest[i+1])
	}
	return out
}

func rlpList(items [][]byte) []byte {
	out, err := rlp.EncodeToBytes(items)
	if err != nil {
		panic("trie: rlp encoding of trie node failed: " + err.Error())
	}
	return out
}

func sortLeaves(entries []hashLeaf) {
	sort.Slice(entries, func(i, j int) bool {
		return lessNibbles(entries[i].path, entries[j].path)
	})
}

func lessNibbles(a, b Nibbles) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
