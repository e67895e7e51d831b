package trie

import "github.com/tclemos/triekv/kv"

// TrieCursorFactory produces cursors over the persisted trie tables from a
// single read transaction.
type TrieCursorFactory struct {
	tx kv.Tx
}

// NewTrieCursorFactory builds a factory bound to tx.
func NewTrieCursorFactory(tx kv.Tx) *TrieCursorFactory {
	return &TrieCursorFactory{tx: tx}
}

// AccountTrieCursor opens a cursor over the account trie.
func (f *TrieCursorFactory) AccountTrieCursor() *AccountTrieCursor {
	return &AccountTrieCursor{c: kv.CursorRead(f.tx, AccountTrie)}
}

// StorageTrieCursor opens a cursor restricted to address's storage trie.
func (f *TrieCursorFactory) StorageTrieCursor(address kv.Hash32) *StorageTrieCursor {
	return &StorageTrieCursor{c: kv.CursorDupRead(f.tx, StorageTrie), account: address}
}

// AccountTrieCursor exposes "seek to nibble path / advance in order" over
// the account trie. It keeps no position of its own; Next resumes from the
// current key that the underlying cursor caches across its single-use
// iterators.
type AccountTrieCursor struct {
	c *kv.Cursor[Nibbles, BranchNodeRecord]
}

// SeekExact returns the branch node at path, or ok=false if absent.
func (c *AccountTrieCursor) SeekExact(path Nibbles) (Nibbles, BranchNodeRecord, bool, error) {
	return c.c.SeekExact(path)
}

// Seek returns the first entry with path' >= path, or ok=false if none.
func (c *AccountTrieCursor) Seek(path Nibbles) (Nibbles, BranchNodeRecord, bool, error) {
	return c.c.Seek(path)
}

// Next advances to the next entry in nibble-path order.
func (c *AccountTrieCursor) Next() (Nibbles, BranchNodeRecord, bool, error) {
	return c.c.Next()
}

// Current returns the entry at the current position without moving.
func (c *AccountTrieCursor) Current() (Nibbles, BranchNodeRecord, bool, error) {
	return c.c.Current()
}

// Close releases the underlying cursor.
func (c *AccountTrieCursor) Close() error { return c.c.Close() }

// StorageTrieCursor exposes the same navigational contract as
// AccountTrieCursor but restricted to one account's storage trie, via the
// StorageTrie dup-sort table keyed by hashed address.
type StorageTrieCursor struct {
	c       *kv.DupCursor[kv.Hash32, Nibbles, StorageTrieNode]
	account kv.Hash32
}

func (c *StorageTrieCursor) inAccount(key kv.Hash32) bool {
	return key == c.account
}

// SeekExact composes (account, path) and looks up the exact composite.
func (c *StorageTrieCursor) SeekExact(path Nibbles) (Nibbles, StorageTrieNode, bool, error) {
	key, _, node, ok, err := c.c.SeekByKeySubkey(c.account, path)
	if err != nil || !ok {
		return nil, StorageTrieNode{}, false, err
	}
	if !c.inAccount(key) {
		return nil, StorageTrieNode{}, false, nil
	}
	return path, node, true, nil
}

// Seek scans forward over the account's sub-keys for the first path >=
// target, returning ok=false once the scan leaves the account's prefix.
func (c *StorageTrieCursor) Seek(path Nibbles) (Nibbles, StorageTrieNode, bool, error) {
	key, sub, node, ok, err := c.c.SeekByKeyForward(c.account, path)
	if err != nil || !ok {
		return nil, StorageTrieNode{}, false, err
	}
	if !c.inAccount(key) {
		return nil, StorageTrieNode{}, false, nil
	}
	return sub, node, true, nil
}

// Next advances via next_dup, returning ok=false once the account's
// sub-keys are exhausted.
func (c *StorageTrieCursor) Next() (Nibbles, StorageTrieNode, bool, error) {
	sub, node, ok, err := c.c.NextDup()
	if err != nil || !ok {
		return nil, StorageTrieNode{}, false, err
	}
	return sub, node, true, nil
}

// Current returns the entry at the current position without moving.
func (c *StorageTrieCursor) Current() (Nibbles, StorageTrieNode, bool, error) {
	key, sub, node, ok, err := c.c.Current()
	if err != nil || !ok || !c.inAccount(key) {
		return nil, StorageTrieNode{}, false, err
	}
	return sub, node, true, nil
}

// Close releases the underlying cursor.
func (c *StorageTrieCursor) Close() error { return c.c.Close() }
