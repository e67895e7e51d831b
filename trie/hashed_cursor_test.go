package trie

import (
	"testing"

	"github.com/tclemos/triekv/kv"
)

func putHashedAccount(t *testing.T, db *kv.Database, addr kv.Hash32, a AccountRecord) {
	t.Helper()
	wtx := db.WriteTx()
	if err := kv.Put(wtx, HashedAccounts, addr, a); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func putHashedSlot(t *testing.T, db *kv.Database, addr, slot, value kv.Hash32) {
	t.Helper()
	wtx := db.WriteTx()
	c := kv.CursorDupWrite(wtx, HashedStorages)
	if err := c.Upsert(addr, slot, value); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	c.Close()
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestHashedAccountCursorSeekExact(t *testing.T) {
	db := openTestDB(t)
	addr := hashFromByte(1)
	putHashedAccount(t, db, addr, AccountRecord{Nonce: 5, Balance: EmptyAccountRecord.Balance})

	rtx := db.ReadTx()
	c := NewHashedCursorFactory(rtx).AccountCursor()
	defer c.Close()

	_, _, ok, err := c.SeekExact(hashFromByte(2))
	if err != nil || ok {
		t.Fatalf("want no match for absent address, ok=%v err=%v", ok, err)
	}
	_, rec, ok, err := c.SeekExact(addr)
	if err != nil || !ok {
		t.Fatalf("SeekExact: ok=%v err=%v", ok, err)
	}
	if rec.Nonce != 5 {
		t.Fatalf("got nonce %d, want 5", rec.Nonce)
	}
}

func TestHashedStorageCursorIsStorageEmpty(t *testing.T) {
	db := openTestDB(t)
	addr := hashFromByte(1)

	rtx := db.ReadTx()
	c := NewHashedCursorFactory(rtx).StorageCursor(addr)
	defer c.Close()

	empty, err := c.IsStorageEmpty()
	if err != nil {
		t.Fatalf("IsStorageEmpty: %v", err)
	}
	if !empty {
		t.Fatal("want storage empty for an address with no slots")
	}
}

func TestHashedStorageCursorIsStorageEmptyFalseWhenPopulated(t *testing.T) {
	db := openTestDB(t)
	addr := hashFromByte(1)
	putHashedSlot(t, db, addr, hashFromByte(10), hashFromByte(99))

	rtx := db.ReadTx()
	c := NewHashedCursorFactory(rtx).StorageCursor(addr)
	defer c.Close()

	empty, err := c.IsStorageEmpty()
	if err != nil {
		t.Fatalf("IsStorageEmpty: %v", err)
	}
	if empty {
		t.Fatal("want storage non-empty for an address with a slot")
	}
}

func TestHashedStorageCursorScopedToAccount(t *testing.T) {
	db := openTestDB(t)
	addrA := hashFromByte(1)
	addrB := hashFromByte(2)
	putHashedSlot(t, db, addrA, hashFromByte(10), hashFromByte(1))
	putHashedSlot(t, db, addrB, hashFromByte(5), hashFromByte(2))

	rtx := db.ReadTx()
	c := NewHashedCursorFactory(rtx).StorageCursor(addrA)
	defer c.Close()

	// Seeking past account A's highest slot must not leak into account B.
	_, _, ok, err := c.Seek(hashFromByte(255))
	if err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if ok {
		t.Fatal("want Seek to report none once it would cross into another account")
	}
}
