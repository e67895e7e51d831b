package kv

import (
	"bytes"
	"sync"

	"github.com/cockroachdb/pebble"
)

// RawCursor is the untyped cursor contract (C6) over one table's physical
// key range. Keys and values returned are already stripped of the table-ID
// prefix. A RawCursor is not safe for concurrent use.
type RawCursor interface {
	First() (key, value []byte, ok bool, err error)
	Last() (key, value []byte, ok bool, err error)
	Seek(key []byte) (k, v []byte, ok bool, err error)
	SeekExact(key []byte) (k, v []byte, ok bool, err error)
	Next() (k, v []byte, ok bool, err error)
	Prev() (k, v []byte, ok bool, err error)
	Current() (k, v []byte, ok bool, err error)
	Close() error
}

// RawCursorRW additionally routes writes into the owning WriteTx's batch.
type RawCursorRW interface {
	RawCursor
	Upsert(key, value []byte) error
	Insert(key, value []byte) error
	Append(key, value []byte) error
	DeleteCurrent() error
}

// rawCursor implements a "single-use iterator per operation" discipline: the
// underlying engine iterator does not survive across calls, so the cursor
// caches its own last-returned (prefixed) key and value and re-seeks a
// fresh iterator from that cached position on every operation.
type rawCursor struct {
	db      *pebble.DB
	tableID TableID
	lower   []byte
	upper   []byte

	current    []byte // last positioned full (prefixed) key, nil if unpositioned
	currentVal []byte

	// batch/mu are non-nil only for a write cursor; write operations stage
	// into batch, guarded by the owning WriteTx's mutex, never touching the
	// engine directly.
	batch *pebble.Batch
	mu    *sync.Mutex

	metrics *metricsState
}

func (c *rawCursor) bump() {
	if c.metrics != nil {
		c.metrics.recordCursorOp()
	}
}

func (c *rawCursor) newIter() (*pebble.Iterator, error) {
	iter, err := c.db.NewIter(&pebble.IterOptions{LowerBound: c.lower, UpperBound: c.upper})
	if err != nil {
		return nil, errOther(tableName(c.tableID), err)
	}
	return iter, nil
}

func (c *rawCursor) strip(fullKey []byte) []byte {
	return fullKey[1:]
}

// First implements RawCursor.
func (c *rawCursor) First() ([]byte, []byte, bool, error) {
	c.bump()
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	full, val, ok := c.capture2(iter.First(), iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

// Last implements RawCursor.
func (c *rawCursor) Last() ([]byte, []byte, bool, error) {
	c.bump()
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	full, val, ok := c.capture2(iter.Last(), iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

// Seek implements RawCursor: positions at the first key >= the target.
func (c *rawCursor) Seek(key []byte) ([]byte, []byte, bool, error) {
	c.bump()
	target := prefixedKey(c.tableID, key)
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	full, val, ok := c.capture2(iter.SeekGE(target), iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

// SeekExact implements RawCursor: position is left unchanged on a miss.
func (c *rawCursor) SeekExact(key []byte) ([]byte, []byte, bool, error) {
	c.bump()
	target := prefixedKey(c.tableID, key)
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	full, val, ok := c.capture2(iter.SeekGE(target), iter)
	if !ok || !bytes.Equal(full, target) {
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

// Next implements RawCursor: when unpositioned, behaves like First; when
// positioned, seeks forward strictly past the cached current key.
func (c *rawCursor) Next() ([]byte, []byte, bool, error) {
	c.bump()
	if c.current == nil {
		return c.firstNoBump()
	}
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	valid := iter.SeekGE(c.current)
	if valid && bytes.Equal(iter.Key(), c.current) {
		valid = iter.Next()
	}
	full, val, ok := c.capture2(valid, iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

// Prev implements RawCursor: when unpositioned, behaves like Last; when
// positioned, retreats to the greatest key strictly less than current.
func (c *rawCursor) Prev() ([]byte, []byte, bool, error) {
	c.bump()
	if c.current == nil {
		return c.lastNoBump()
	}
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()

	valid := iter.SeekLT(c.current)
	full, val, ok := c.capture2(valid, iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

// Current implements RawCursor without touching the engine.
func (c *rawCursor) Current() ([]byte, []byte, bool, error) {
	if c.current == nil {
		return nil, nil, false, nil
	}
	return c.strip(c.current), c.currentVal, true, nil
}

func (c *rawCursor) Close() error { return nil }

func (c *rawCursor) capture2(valid bool, iter *pebble.Iterator) (key, value []byte, ok bool) {
	if !valid || !iter.Valid() {
		return nil, nil, false
	}
	return append([]byte(nil), iter.Key()...), append([]byte(nil), iter.Value()...), true
}

func (c *rawCursor) firstNoBump() ([]byte, []byte, bool, error) {
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()
	full, val, ok := c.capture2(iter.First(), iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

func (c *rawCursor) lastNoBump() ([]byte, []byte, bool, error) {
	iter, err := c.newIter()
	if err != nil {
		return nil, nil, false, err
	}
	defer iter.Close()
	full, val, ok := c.capture2(iter.Last(), iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil, nil, false, nil
	}
	c.current, c.currentVal = full, val
	return c.strip(full), val, true, nil
}

// Upsert implements RawCursorRW: writes v at k unconditionally.
func (c *rawCursor) Upsert(key, value []byte) error {
	full := prefixedKey(c.tableID, key)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.batch.Set(full, value, nil); err != nil {
		return errOther(tableName(c.tableID), err)
	}
	return nil
}

// Insert implements RawCursorRW: fails with KeyExists if key is already
// present in the engine. The existence check only ever consults the
// engine, never this transaction's own uncommitted batch, matching the
// "batch is write-only" visibility rule for reads.
func (c *rawCursor) Insert(key, value []byte) error {
	full := prefixedKey(c.tableID, key)
	_, closer, err := c.db.Get(full)
	if err == nil {
		_ = closer.Close()
		return errKeyExists(tableName(c.tableID))
	}
	if err != pebble.ErrNotFound {
		return errOther(tableName(c.tableID), err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.batch.Set(full, value, nil); err != nil {
		return errOther(tableName(c.tableID), err)
	}
	return nil
}

// Append implements RawCursorRW: behaves like Upsert. The ordering
// requirement ("k greater than the previous append") is a performance
// contract of the real engine's bulk-load path, not a correctness
// invariant; violating it is explicitly undefined, so no extra validation
// is performed here.
func (c *rawCursor) Append(key, value []byte) error {
	return c.Upsert(key, value)
}

// DeleteCurrent implements RawCursorRW: stages a delete of the entry at the
// current position and advances the cached position forward, exactly as if
// the delete had already taken effect (the engine itself still has the key
// until Commit, per the batch-is-write-only visibility rule).
func (c *rawCursor) DeleteCurrent() error {
	if c.current == nil {
		return errOther(tableName(c.tableID), errNoCurrentPosition)
	}
	deleted := c.current

	c.mu.Lock()
	err := c.batch.Delete(deleted, nil)
	c.mu.Unlock()
	if err != nil {
		return errOther(tableName(c.tableID), err)
	}

	iter, ierr := c.newIter()
	if ierr != nil {
		return ierr
	}
	defer iter.Close()
	valid := iter.SeekGE(deleted)
	if valid && bytes.Equal(iter.Key(), deleted) {
		valid = iter.Next()
	}
	full, val, ok := c.capture2(valid, iter)
	if !ok {
		c.current, c.currentVal = nil, nil
		return nil
	}
	c.current, c.currentVal = full, val
	return nil
}

var errNoCurrentPosition = errCursorUnpositioned{}

type errCursorUnpositioned struct{}

func (errCursorUnpositioned) Error() string { return "cursor is not positioned" }
