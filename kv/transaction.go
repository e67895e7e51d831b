package kv

import (
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

// Tx is the read-only contract shared by ReadTx and WriteTx (C5). Read/write
// is not a boolean or generic parameter on one type: ReadTx and WriteTx are
// distinct concrete types, and WriteTx additionally satisfies MutTx.
//
// ReadTx holds only the shared engine handle, so concurrent reads through
// one Tx are safe; WriteTx stages mutations in a batch behind a mutex, so
// concurrent PutRaw/DeleteRaw/ClearRaw calls on one WriteTx serialize.
// Cursors opened from a Tx are not safe for concurrent use (see SyncCursor).
type Tx interface {
	// GetRaw performs a point lookup of the physical key table||key against
	// the engine. It is the untyped primitive behind the generic Get
	// function; callers normally use Get instead.
	GetRaw(table TableID, key []byte) (value []byte, ok bool, err error)

	// CursorRaw opens a read-only cursor over table.
	CursorRaw(table TableID) RawCursor

	// Entries counts the entries stored under table. It is a full scan,
	// not a cached counter.
	Entries(table TableID) (uint64, error)
}

// MutTx is the write contract WriteTx additionally satisfies.
type MutTx interface {
	Tx

	PutRaw(table TableID, key, value []byte) error
	DeleteRaw(table TableID, key []byte) error
	ClearRaw(table TableID) error
	CursorRawWrite(table TableID) RawCursorRW

	// Commit atomically applies every staged mutation to the engine. The
	// WriteTx is consumed; it must not be used afterwards.
	Commit() error
	// Abort discards every staged mutation. The WriteTx is consumed.
	Abort() error
}

// ReadTx is a read-only transaction handle (C5). Reads observe the engine's
// state as of whenever each individual read call runs; ReadTx itself holds
// no snapshot handle of its own, matching Pebble's "reads are always
// consistent against the current visible state" model, falling back to the
// most recently committed writes.
type ReadTx struct {
	db      *pebble.DB
	metrics *metricsState
}

var _ Tx = (*ReadTx)(nil)

// GetRaw implements Tx.
func (tx *ReadTx) GetRaw(table TableID, key []byte) ([]byte, bool, error) {
	return tx.getRaw(table, key)
}

func (tx *ReadTx) getRaw(table TableID, key []byte) ([]byte, bool, error) {
	full := prefixedKey(table, key)
	val, closer, err := tx.db.Get(full)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, errOther(tableName(table), err)
	}
	out := append([]byte(nil), val...)
	_ = closer.Close()
	return out, true, nil
}

// CursorRaw implements Tx.
func (tx *ReadTx) CursorRaw(table TableID) RawCursor {
	lower, upper := tableBounds(table)
	return &rawCursor{db: tx.db, tableID: table, lower: lower, upper: upper, metrics: tx.metrics}
}

// Entries implements Tx.
func (tx *ReadTx) Entries(table TableID) (uint64, error) {
	return countEntries(tx.db, table)
}

func countEntries(db *pebble.DB, table TableID) (uint64, error) {
	lower, upper := tableBounds(table)
	iter, err := db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return 0, errOther(tableName(table), err)
	}
	defer iter.Close()
	var n uint64
	for ok := iter.First(); ok; ok = iter.Next() {
		n++
	}
	return n, nil
}

// WriteTx is a read-write transaction handle (C5). Mutations accumulate in
// an in-memory batch, behind a mutex, and are applied atomically on Commit;
// they are never visible to reads through this same WriteTx because reads always go straight to the engine.
type WriteTx struct {
	ReadTx

	mu    sync.Mutex
	batch *pebble.Batch
}

var _ Tx = (*WriteTx)(nil)
var _ MutTx = (*WriteTx)(nil)

// PutRaw implements MutTx: encodes/compresses happen in the generic Put
// helper; this stages the already-encoded put into the batch.
func (tx *WriteTx) PutRaw(table TableID, key, value []byte) error {
	return tx.putRaw(table, key, value)
}

func (tx *WriteTx) putRaw(table TableID, key, value []byte) error {
	full := prefixedKey(table, key)
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.batch.Set(full, value, nil); err != nil {
		return errOther(tableName(table), err)
	}
	return nil
}

// DeleteRaw implements MutTx.
func (tx *WriteTx) DeleteRaw(table TableID, key []byte) error {
	full := prefixedKey(table, key)
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.batch.Delete(full, nil); err != nil {
		return errOther(tableName(table), err)
	}
	return nil
}

// ClearRaw implements MutTx: appends a column-family range-delete from the
// minimum to the maximum possible key of table.
func (tx *WriteTx) ClearRaw(table TableID) error {
	lower, upper := tableBounds(table)
	if upper == nil {
		upper = []byte{0xFF, 0xFF, 0xFF, 0xFF}
	}
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if err := tx.batch.DeleteRange(lower, upper, nil); err != nil {
		return errOther(tableName(table), err)
	}
	return nil
}

// CursorRawWrite implements MutTx.
func (tx *WriteTx) CursorRawWrite(table TableID) RawCursorRW {
	lower, upper := tableBounds(table)
	return &rawCursor{
		db:      tx.db,
		tableID: table,
		lower:   lower,
		upper:   upper,
		batch:   tx.batch,
		mu:      &tx.mu,
		metrics: tx.metrics,
	}
}

// Commit atomically writes the staged batch to the engine.
// The batch mutex is released before the blocking engine write so other
// goroutines sharing this WriteTx are never blocked on engine I/O while
// holding the lock.
func (tx *WriteTx) Commit() error {
	start := time.Now()

	tx.mu.Lock()
	batch := tx.batch
	tx.batch = nil
	tx.mu.Unlock()

	if batch == nil {
		return errOther("", errAlreadyConsumed)
	}
	if err := tx.db.Apply(batch, pebble.NoSync); err != nil {
		return errOther("", err)
	}
	if tx.metrics != nil {
		tx.metrics.recordCommit(time.Since(start))
	}
	return nil
}

// Abort discards every staged mutation. The batch is simply
// never applied; closing it releases its resources.
func (tx *WriteTx) Abort() error {
	tx.mu.Lock()
	batch := tx.batch
	tx.batch = nil
	tx.mu.Unlock()

	if batch == nil {
		return nil
	}
	if tx.metrics != nil {
		tx.metrics.recordAbort()
	}
	return batch.Close()
}

var errAlreadyConsumed = errTxConsumed{}

type errTxConsumed struct{}

func (errTxConsumed) Error() string { return "transaction already committed or aborted" }

func prefixedKey(table TableID, key []byte) []byte {
	out := make([]byte, 1+len(key))
	out[0] = table
	copy(out[1:], key)
	return out
}

func tableName(id TableID) string {
	registryMu.Lock()
	defer registryMu.Unlock()
	if m, ok := byID[id]; ok {
		return m.Name
	}
	return ""
}
