package trie

import "testing"

func TestEncodeDecodeStorageTrieNodeRoundTrip(t *testing.T) {
	n := StorageTrieNode{Path: Nibbles{1, 2, 3}, NodeHash: [32]byte{9, 9, 9}}
	got, err := DecodeStorageTrieNode(EncodeStorageTrieNode(n))
	if err != nil {
		t.Fatalf("DecodeStorageTrieNode: %v", err)
	}
	if got.NodeHash != n.NodeHash {
		t.Fatalf("hash mismatch: got %v, want %v", got.NodeHash, n.NodeHash)
	}
	if len(got.Path) != len(n.Path) {
		t.Fatalf("path length mismatch: got %d, want %d", len(got.Path), len(n.Path))
	}
	for i := range n.Path {
		if got.Path[i] != n.Path[i] {
			t.Fatalf("path mismatch at %d: got %d, want %d", i, got.Path[i], n.Path[i])
		}
	}
}

func TestDecodeStorageTrieNodeRejectsTruncated(t *testing.T) {
	n := StorageTrieNode{Path: Nibbles{1, 2}, NodeHash: [32]byte{1}}
	enc := EncodeStorageTrieNode(n)
	if _, err := DecodeStorageTrieNode(enc[:len(enc)-1]); err == nil {
		t.Fatal("want error decoding a truncated storage-trie node")
	}
}
