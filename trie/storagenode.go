package trie

// StorageTrieNode is the StorageTrie table's value: "nibble path plus
// 32-byte node hash". The path recorded here is the node's own
// path within the account's storage trie, which may be shorter than the
// dup-sort sub-key's full 64-nibble slot path when the value represents an
// intermediate branch rather than a leaf.
type StorageTrieNode struct {
	Path     Nibbles
	NodeHash [32]byte
}

// EncodeStorageTrieNode packs Path as a length byte followed by its nibble
// bytes, then the 32-byte hash. This is a value encoding, not a key
// encoding: it is never compared byte-wise, so a length prefix ahead of the
// nibble run is fine here (unlike AccountTrie's key codec in nibbles.go).
func EncodeStorageTrieNode(n StorageTrieNode) []byte {
	enc := EncodeNibbles(n.Path)
	out := make([]byte, 0, 1+len(enc)+32)
	out = append(out, byte(len(n.Path)))
	out = append(out, enc...)
	out = append(out, n.NodeHash[:]...)
	return out
}

// DecodeStorageTrieNode reverses EncodeStorageTrieNode.
func DecodeStorageTrieNode(b []byte) (StorageTrieNode, error) {
	if len(b) < 1 {
		return StorageTrieNode{}, errBadStorageNode
	}
	pathLen := int(b[0])
	if pathLen > 64 || len(b) != 1+pathLen+32 {
		return StorageTrieNode{}, errBadStorageNode
	}
	path, err := DecodeNibbles(b[1 : 1+pathLen])
	if err != nil {
		return StorageTrieNode{}, &decodeErr{typ: "storage-trie-node", err: err}
	}
	var hash [32]byte
	copy(hash[:], b[1+pathLen:])
	return StorageTrieNode{Path: path, NodeHash: hash}, nil
}

var errBadStorageNode = errStorageNodeEncoding{}

type errStorageNodeEncoding struct{}

func (errStorageNodeEncoding) Error() string { return "invalid storage-trie node encoding" }
