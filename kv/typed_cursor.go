package kv

import (
	"bytes"
	"iter"
)

// Range bounds a WalkRange scan: [From, To). A nil From starts at the first
// entry; a nil To runs to the end of the table.
type Range[K any] struct {
	From *K
	To   *K
}

// Cursor is the typed ordered cursor over a non-dup-sort table (C6). It
// wraps a RawCursor, decoding keys/values through the table's codec. A
// Cursor obtained via CursorRead is read-only; Upsert/Insert/Append/
// DeleteCurrent return an error on a read-only cursor.
type Cursor[K any, V any] struct {
	raw   RawCursor
	rw    RawCursorRW
	table Table[K, V]
	err   error
}

// Err returns the error, if any, that stopped the most recent Walk*
// iteration.
func (c *Cursor[K, V]) Err() error { return c.err }

// Close releases the cursor's resources.
func (c *Cursor[K, V]) Close() error { return c.raw.Close() }

func (c *Cursor[K, V]) decode(k, v []byte) (K, V, error) {
	var zk K
	var zv V
	key, err := c.table.DecodeKey(k)
	if err != nil {
		return zk, zv, errDecode(c.table.Name, err)
	}
	val, err := c.table.DecompressValue(v)
	if err != nil {
		return zk, zv, errDecode(c.table.Name, err)
	}
	return key, val, nil
}

func (c *Cursor[K, V]) wrap(k, v []byte, ok bool, err error) (K, V, bool, error) {
	var zk K
	var zv V
	if err != nil || !ok {
		return zk, zv, false, err
	}
	dk, dv, derr := c.decode(k, v)
	if derr != nil {
		return zk, zv, false, derr
	}
	return dk, dv, true, nil
}

// First positions at the first entry, or reports none.
func (c *Cursor[K, V]) First() (K, V, bool, error) { return c.wrap(c.raw.First()) }

// Last positions at the last entry.
func (c *Cursor[K, V]) Last() (K, V, bool, error) { return c.wrap(c.raw.Last()) }

// Seek positions at the first key >= target.
func (c *Cursor[K, V]) Seek(key K) (K, V, bool, error) {
	return c.wrap(c.raw.Seek(c.table.EncodeKey(key)))
}

// SeekExact positions only on an exact match; unchanged on miss.
func (c *Cursor[K, V]) SeekExact(key K) (K, V, bool, error) {
	return c.wrap(c.raw.SeekExact(c.table.EncodeKey(key)))
}

// Next advances one entry.
func (c *Cursor[K, V]) Next() (K, V, bool, error) { return c.wrap(c.raw.Next()) }

// Prev retreats one entry.
func (c *Cursor[K, V]) Prev() (K, V, bool, error) { return c.wrap(c.raw.Prev()) }

// Current returns the entry at the current position without moving.
func (c *Cursor[K, V]) Current() (K, V, bool, error) { return c.wrap(c.raw.Current()) }

// Upsert writes value at key, overwriting any existing value.
func (c *Cursor[K, V]) Upsert(key K, value V) error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	return c.rw.Upsert(c.table.EncodeKey(key), c.table.CompressValue(value))
}

// Insert writes value at key only if absent, else KeyExists.
func (c *Cursor[K, V]) Insert(key K, value V) error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	return c.rw.Insert(c.table.EncodeKey(key), c.table.CompressValue(value))
}

// Append writes value at key assuming key is greater than every previously
// appended key.
func (c *Cursor[K, V]) Append(key K, value V) error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	return c.rw.Append(c.table.EncodeKey(key), c.table.CompressValue(value))
}

// DeleteCurrent removes the entry at the current position and advances
// forward.
func (c *Cursor[K, V]) DeleteCurrent() error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	return c.rw.DeleteCurrent()
}

// Walk returns a lazy forward sequence from start (or the first entry if
// start is nil). Iterate with a range loop; check Err() afterwards to
// distinguish a clean end from a mid-walk error.
func (c *Cursor[K, V]) Walk(start *K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		c.err = nil
		var k K
		var v V
		var ok bool
		var err error
		if start != nil {
			k, v, ok, err = c.Seek(*start)
		} else {
			k, v, ok, err = c.First()
		}
		for {
			if err != nil {
				c.err = err
				return
			}
			if !ok {
				return
			}
			if !yield(k, v) {
				return
			}
			k, v, ok, err = c.Next()
		}
	}
}

// WalkRange returns a lazy forward sequence bounded by r ([From, To)).
func (c *Cursor[K, V]) WalkRange(r Range[K]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		var toEnc []byte
		if r.To != nil {
			toEnc = c.table.EncodeKey(*r.To)
		}
		for k, v := range c.Walk(r.From) {
			if toEnc != nil && bytes.Compare(c.table.EncodeKey(k), toEnc) >= 0 {
				return
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// WalkBack returns a lazy reverse sequence from start (or the last entry if
// start is nil).
func (c *Cursor[K, V]) WalkBack(start *K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		c.err = nil
		var k K
		var v V
		var ok bool
		var err error
		if start != nil {
			k, v, ok, err = c.Seek(*start)
		} else {
			k, v, ok, err = c.Last()
		}
		for {
			if err != nil {
				c.err = err
				return
			}
			if !ok {
				return
			}
			if !yield(k, v) {
				return
			}
			k, v, ok, err = c.Prev()
		}
	}
}

var errReadOnlyCursor = errCursorReadOnly{}

type errCursorReadOnly struct{}

func (errCursorReadOnly) Error() string { return "cursor was opened read-only" }
