package kv

// Get performs a typed point lookup.
func Get[K any, V any](tx Tx, t Table[K, V], key K) (V, bool, error) {
	var zero V
	raw, ok, err := tx.GetRaw(t.ID, t.EncodeKey(key))
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	v, derr := t.DecompressValue(raw)
	if derr != nil {
		return zero, false, errDecode(t.Name, derr)
	}
	return v, true, nil
}

// GetByEncodedKey performs a point lookup without re-encoding the key.
func GetByEncodedKey[K any, V any](tx Tx, t Table[K, V], encodedKey []byte) (V, bool, error) {
	var zero V
	raw, ok, err := tx.GetRaw(t.ID, encodedKey)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	v, derr := t.DecompressValue(raw)
	if derr != nil {
		return zero, false, errDecode(t.Name, derr)
	}
	return v, true, nil
}

// Put encodes and compresses key/value and stages a put in tx's batch.
func Put[K any, V any](tx MutTx, t Table[K, V], key K, value V) error {
	return tx.PutRaw(t.ID, t.EncodeKey(key), t.CompressValue(value))
}

// Delete stages a delete of key in tx's batch.
func Delete[K any, V any](tx MutTx, t Table[K, V], key K) error {
	return tx.DeleteRaw(t.ID, t.EncodeKey(key))
}

// Clear stages a full-table range-delete.
func Clear[K any, V any](tx MutTx, t Table[K, V]) error {
	return tx.ClearRaw(t.ID)
}

// Entries counts the entries in table t.
func Entries[K any, V any](tx Tx, t Table[K, V]) (uint64, error) {
	return tx.Entries(t.ID)
}

// CursorRead opens a read-only typed cursor over t.
func CursorRead[K any, V any](tx Tx, t Table[K, V]) *Cursor[K, V] {
	return &Cursor[K, V]{raw: tx.CursorRaw(t.ID), table: t}
}

// CursorWrite opens a mutating typed cursor over t, routed through tx's
// batch.
func CursorWrite[K any, V any](tx MutTx, t Table[K, V]) *Cursor[K, V] {
	rw := tx.CursorRawWrite(t.ID)
	return &Cursor[K, V]{raw: rw, rw: rw, table: t}
}

// GetDup performs a point lookup of a dup-sort table's composite
// (key, sub-key) via seek_by_key_subkey semantics.
func GetDup[K any, S any, V any](tx Tx, t DupTable[K, S, V], key K, subKey S) (V, bool, error) {
	c := CursorDupRead(tx, t)
	defer c.Close()
	_, v, ok, err := c.SeekByKeySubkey(key, subKey)
	return v, ok, err
}

// CursorDupRead opens a read-only dup-sort cursor over t.
func CursorDupRead[K any, S any, V any](tx Tx, t DupTable[K, S, V]) *DupCursor[K, S, V] {
	return &DupCursor[K, S, V]{raw: tx.CursorRaw(t.ID), table: t}
}

// CursorDupWrite opens a mutating dup-sort cursor over t, routed through
// tx's batch.
func CursorDupWrite[K any, S any, V any](tx MutTx, t DupTable[K, S, V]) *DupCursor[K, S, V] {
	rw := tx.CursorRawWrite(t.ID)
	return &DupCursor[K, S, V]{raw: rw, rw: rw, table: t}
}
