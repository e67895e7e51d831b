package kv

import "testing"

func seedTestAccounts(t *testing.T, db *Database, bs ...byte) {
	t.Helper()
	wtx := db.WriteTx()
	for _, b := range bs {
		if err := Put(wtx, testAccounts, hashFromByte(b), RawBytes{b}); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestCursorWalkOrdersAscending(t *testing.T) {
	db := openTestDB(t)
	seedTestAccounts(t, db, 5, 1, 3, 2, 4)

	rtx := db.ReadTx()
	c := CursorRead(rtx, testAccounts)
	defer c.Close()

	var got []byte
	for k, v := range c.Walk(nil) {
		if k != hashFromByte(v[0]) {
			t.Fatalf("key/value mismatch: key=%v value=%v", k, v)
		}
		got = append(got, v[0])
	}
	if err := c.Err(); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []byte{1, 2, 3, 4, 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCursorWalkRangeBounds(t *testing.T) {
	db := openTestDB(t)
	seedTestAccounts(t, db, 1, 2, 3, 4, 5)

	rtx := db.ReadTx()
	c := CursorRead(rtx, testAccounts)
	defer c.Close()

	from := hashFromByte(2)
	to := hashFromByte(4)
	var got []byte
	for _, v := range c.WalkRange(Range[Hash32]{From: &from, To: &to}) {
		got = append(got, v[0])
	}
	if err := c.Err(); err != nil {
		t.Fatalf("WalkRange: %v", err)
	}
	want := []byte{2, 3}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v (half-open [2,4))", got, want)
	}
}

func TestCursorWalkBackDescends(t *testing.T) {
	db := openTestDB(t)
	seedTestAccounts(t, db, 1, 2, 3)

	rtx := db.ReadTx()
	c := CursorRead(rtx, testAccounts)
	defer c.Close()

	var got []byte
	for _, v := range c.WalkBack(nil) {
		got = append(got, v[0])
	}
	want := []byte{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestCursorSeekExactUnchangedOnMiss(t *testing.T) {
	db := openTestDB(t)
	seedTestAccounts(t, db, 1, 3)

	rtx := db.ReadTx()
	c := CursorRead(rtx, testAccounts)
	defer c.Close()

	if _, _, ok, err := c.First(); err != nil || !ok {
		t.Fatalf("First: ok=%v err=%v", ok, err)
	}
	if _, _, ok, err := c.SeekExact(hashFromByte(2)); err != nil || ok {
		t.Fatalf("SeekExact on missing key: ok=%v err=%v", ok, err)
	}
	k, _, ok, err := c.Current()
	if err != nil || !ok {
		t.Fatalf("Current after failed SeekExact: ok=%v err=%v", ok, err)
	}
	if k != hashFromByte(1) {
		t.Fatalf("position moved after failed SeekExact: got %v, want key(1)", k)
	}
}

func TestCursorWriteReadOnlyRejectsMutation(t *testing.T) {
	db := openTestDB(t)
	rtx := db.ReadTx()
	c := CursorRead(rtx, testAccounts)
	defer c.Close()

	if err := c.Upsert(hashFromByte(1), RawBytes{1}); err == nil {
		t.Fatal("want error mutating a read-only cursor")
	}
}

func TestCursorInsertRejectsDuplicate(t *testing.T) {
	db := openTestDB(t)
	seedTestAccounts(t, db, 1)

	wtx := db.WriteTx()
	c := CursorWrite(wtx, testAccounts)
	defer c.Close()

	if err := c.Insert(hashFromByte(1), RawBytes{9}); err == nil || !IsKeyExists(err) {
		t.Fatalf("want KeyExists inserting a key already committed to the engine, got %v", err)
	}
}

func TestCursorDeleteCurrentAdvances(t *testing.T) {
	db := openTestDB(t)
	seedTestAccounts(t, db, 1, 2, 3)

	wtx := db.WriteTx()
	c := CursorWrite(wtx, testAccounts)
	if _, _, ok, err := c.Seek(hashFromByte(2)); err != nil || !ok {
		t.Fatalf("Seek: ok=%v err=%v", ok, err)
	}
	if err := c.DeleteCurrent(); err != nil {
		t.Fatalf("DeleteCurrent: %v", err)
	}
	k, _, ok, err := c.Current()
	if err != nil || !ok {
		t.Fatalf("Current after delete: ok=%v err=%v", ok, err)
	}
	if k != hashFromByte(3) {
		t.Fatalf("got %v, want key(3) after deleting key(2)", k)
	}
	c.Close()
	if err := wtx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	rtx := db.ReadTx()
	if _, ok, err := Get(rtx, testAccounts, hashFromByte(2)); err != nil || ok {
		t.Fatalf("want key(2) gone after commit, ok=%v err=%v", ok, err)
	}
}
