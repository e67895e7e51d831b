package kv

import (
	"testing"
)

// testAccounts is a private test-only table registered purely for exercising
// the generic Get/Put/Cursor surface end to end against a real engine.
var testAccounts = Table[Hash32, RawBytes]{
	Name:            "TestAccounts",
	ID:              200,
	EncodeKey:       EncodeHash32,
	DecodeKey:       DecodeHash32,
	CompressValue:   CompressRawBytes,
	DecompressValue: DecompressRawBytes,
}

var testAccountSlots = DupTable[Hash32, Hash32, RawBytes]{
	Name:            "TestAccountSlots",
	ID:              201,
	EncodeKey:       EncodeHash32,
	DecodeKey:       DecodeHash32,
	EncodeSubKey:    EncodeHash32,
	DecodeSubKey:    DecodeHash32,
	CompressValue:   CompressRawBytes,
	DecompressValue: DecompressRawBytes,
	DupKeyLen:       32,
}

func init() {
	RegisterTable(testAccounts.Meta())
	RegisterTable(testAccountSlots.Meta())
}

func openTestDB(t *testing.T) *Database {
	t.Helper()
	opts := DefaultOptions(t.TempDir())
	db, err := Open(opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func hashFromByte(b byte) Hash32 {
	var h Hash32
	h[31] = b
	return h
}

func TestOpenInitializesSchemaVersion(t *testing.T) {
	db := openTestDB(t)
	tx := db.ReadTx()
	raw, ok, err := tx.getRaw(tableIDDefault, versionKey)
	if err != nil {
		t.Fatalf("getRaw: %v", err)
	}
	if !ok {
		t.Fatal("want db_version to be set after Open")
	}
	got, err := decodeVersion(raw)
	if err != nil {
		t.Fatalf("decodeVersion: %v", err)
	}
	if got != CurrentVersion {
		t.Fatalf("got version %d, want %d", got, CurrentVersion)
	}
}

func TestReopenKeepsSchemaVersion(t *testing.T) {
	path := t.TempDir()
	db1, err := Open(DefaultOptions(path))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db2, err := Open(DefaultOptions(path))
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db2.Close()

	tx := db2.ReadTx()
	raw, ok, err := tx.getRaw(tableIDDefault, versionKey)
	if err != nil || !ok {
		t.Fatalf("want db_version still present after reopen, ok=%v err=%v", ok, err)
	}
	got, _ := decodeVersion(raw)
	if got != CurrentVersion {
		t.Fatalf("got version %d, want %d", got, CurrentVersion)
	}
}

func TestPutGetCommitVisibility(t *testing.T) {
	db := openTestDB(t)
	key := hashFromByte(1)
	val := RawBytes("hello")

	wtx := db.WriteTx()
	if err := Put(wtx, testAccounts, key, val); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Spec.md 4.5 visibility rule: writes are not visible through reads
	// until Commit.
	rtx := db.ReadTx()
	if _, ok, err := Get(rtx, testAccounts, key); err != nil || ok {
		t.Fatalf("want key invisible before commit, ok=%v err=%v", ok, err)
	}

	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rtx2 := db.ReadTx()
	got, ok, err := Get(rtx2, testAccounts, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("want key present after commit")
	}
	if string(got) != string(val) {
		t.Fatalf("got %q, want %q", got, val)
	}
}

func TestAbortDiscardsMutations(t *testing.T) {
	db := openTestDB(t)
	key := hashFromByte(2)

	wtx := db.WriteTx()
	if err := Put(wtx, testAccounts, key, RawBytes("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := wtx.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}

	rtx := db.ReadTx()
	if _, ok, err := Get(rtx, testAccounts, key); err != nil || ok {
		t.Fatalf("want key absent after abort, ok=%v err=%v", ok, err)
	}
}

func TestClearRemovesOnlyOwnTable(t *testing.T) {
	db := openTestDB(t)
	k1, k2 := hashFromByte(3), hashFromByte(4)

	wtx := db.WriteTx()
	if err := Put(wtx, testAccounts, k1, RawBytes("a")); err != nil {
		t.Fatalf("Put testAccounts: %v", err)
	}
	slotCursor := CursorDupWrite(wtx, testAccountSlots)
	if err := slotCursor.Upsert(k1, k2, RawBytes("slot")); err != nil {
		t.Fatalf("Put testAccountSlots: %v", err)
	}
	if err := slotCursor.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	wtx2 := db.WriteTx()
	if err := Clear(wtx2, testAccounts); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if err := wtx2.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rtx := db.ReadTx()
	if _, ok, err := Get(rtx, testAccounts, k1); err != nil || ok {
		t.Fatalf("want testAccounts empty after Clear, ok=%v err=%v", ok, err)
	}
	if _, ok, err := GetDup(rtx, testAccountSlots, k1, k2); err != nil || !ok {
		t.Fatalf("want testAccountSlots untouched by Clear(testAccounts), ok=%v err=%v", ok, err)
	}
}

func TestEntriesCountsFullScan(t *testing.T) {
	db := openTestDB(t)
	wtx := db.WriteTx()
	for i := byte(0); i < 5; i++ {
		if err := Put(wtx, testAccounts, hashFromByte(i+10), RawBytes{i}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rtx := db.ReadTx()
	n, err := Entries(rtx, testAccounts)
	if err != nil {
		t.Fatalf("Entries: %v", err)
	}
	if n != 5 {
		t.Fatalf("got %d entries, want 5", n)
	}
}

