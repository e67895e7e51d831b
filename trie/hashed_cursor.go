package trie

import "github.com/tclemos/triekv/kv"

// HashedCursorFactory produces cursors over the hashed-state tables from a
// single read transaction.
type HashedCursorFactory struct {
	tx kv.Tx
}

// NewHashedCursorFactory builds a factory bound to tx.
func NewHashedCursorFactory(tx kv.Tx) *HashedCursorFactory {
	return &HashedCursorFactory{tx: tx}
}

// AccountCursor opens an ordered cursor over hashed accounts.
func (f *HashedCursorFactory) AccountCursor() *HashedAccountCursor {
	return &HashedAccountCursor{c: kv.CursorRead(f.tx, HashedAccounts)}
}

// StorageCursor opens a cursor restricted to address's hashed storage
// slots.
func (f *HashedCursorFactory) StorageCursor(address kv.Hash32) *HashedStorageCursor {
	return &HashedStorageCursor{
		c:       kv.CursorDupRead(f.tx, HashedStorages),
		account: address,
	}
}

// HashedAccountCursor is a thin ordered wrapper over the hashed-accounts
// table.
type HashedAccountCursor struct {
	c *kv.Cursor[kv.Hash32, AccountRecord]
}

func (c *HashedAccountCursor) Seek(addr kv.Hash32) (kv.Hash32, AccountRecord, bool, error) {
	return c.c.Seek(addr)
}

func (c *HashedAccountCursor) SeekExact(addr kv.Hash32) (kv.Hash32, AccountRecord, bool, error) {
	return c.c.SeekExact(addr)
}

func (c *HashedAccountCursor) Next() (kv.Hash32, AccountRecord, bool, error) { return c.c.Next() }

func (c *HashedAccountCursor) Close() error { return c.c.Close() }

// HashedStorageCursor is a thin wrapper over the hashed-storages dup-sort
// table, restricted to one account.
type HashedStorageCursor struct {
	c       *kv.DupCursor[kv.Hash32, kv.Hash32, kv.Hash32]
	account kv.Hash32
}

// Seek returns the first slot >= slot within this account.
func (c *HashedStorageCursor) Seek(slot kv.Hash32) (kv.Hash32, kv.Hash32, bool, error) {
	key, sub, val, ok, err := c.c.SeekByKeyForward(c.account, slot)
	if err != nil || !ok || key != c.account {
		return kv.Hash32{}, kv.Hash32{}, false, err
	}
	return sub, val, true, nil
}

// SeekExact returns the value at the exact (account, slot), if present.
func (c *HashedStorageCursor) SeekExact(slot kv.Hash32) (kv.Hash32, kv.Hash32, bool, error) {
	key, sub, val, ok, err := c.c.SeekByKeySubkey(c.account, slot)
	if err != nil || !ok || key != c.account {
		return kv.Hash32{}, kv.Hash32{}, false, err
	}
	return sub, val, true, nil
}

// Next advances to the next slot of this account via next_dup.
func (c *HashedStorageCursor) Next() (kv.Hash32, kv.Hash32, bool, error) {
	sub, val, ok, err := c.c.NextDup()
	if err != nil || !ok {
		return kv.Hash32{}, kv.Hash32{}, false, err
	}
	return sub, val, true, nil
}

// IsStorageEmpty reports whether this account has any storage slots, by
// seeking the smallest possible slot within the account's prefix. If the
// seek lands on a different account, there were none.
func (c *HashedStorageCursor) IsStorageEmpty() (bool, error) {
	key, _, _, ok, err := c.c.SeekByKeyForward(c.account, kv.Hash32{})
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	return key != c.account, nil
}

func (c *HashedStorageCursor) Close() error { return c.c.Close() }
