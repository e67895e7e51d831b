package kv

import (
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
)

// Database owns one LSM engine instance (C4). The engine itself owns all
// on-disk data; a Database handle is safe to share across goroutines.
type Database struct {
	db      *pebble.DB
	cache   *pebble.Cache
	opts    Options
	metrics *metricsState
}

// Open opens the LSM engine at opts.Path, reconciling the registry of
// tables (C3) against what is on disk: table IDs present in the registry
// but not yet used are simply available to write to; IDs that are no longer
// registered are left untouched. On success it runs the schema version manager (A4).
func Open(opts Options) (*Database, error) {
	tables := AllTables()

	pebbleOpts := &pebble.Options{
		MaxOpenFiles:     opts.MaxOpenFiles,
		Comparer:         buildComparer(tables),
		ErrorIfNotExists: !opts.CreateIfMissing,
	}

	var cache *pebble.Cache
	if opts.CacheSizeBytes > 0 {
		cache = pebble.NewCache(opts.CacheSizeBytes)
		pebbleOpts.Cache = cache
	}

	opts.Logger.Info().Str("path", opts.Path).Int("tables", len(tables)).Msg("opening database")

	db, err := pebble.Open(opts.Path, pebbleOpts)
	if err != nil {
		if cache != nil {
			cache.Unref()
		}
		return nil, errOther("", fmt.Errorf("open engine at %s: %w", opts.Path, err))
	}

	d := &Database{db: db, cache: cache, opts: opts, metrics: newMetricsState()}

	if err := CheckAndMigrateVersion(d); err != nil {
		_ = db.Close()
		if cache != nil {
			cache.Unref()
		}
		return nil, err
	}

	return d, nil
}

// ReadTx begins a read-only transaction (C5).
func (d *Database) ReadTx() *ReadTx {
	return &ReadTx{db: d.db, metrics: d.metrics}
}

// WriteTx begins a read-write transaction (C5). Its mutations accumulate in
// a batch and are not visible to reads until Commit.
func (d *Database) WriteTx() *WriteTx {
	return &WriteTx{
		ReadTx: ReadTx{db: d.db, metrics: d.metrics},
		batch:  d.db.NewBatch(),
	}
}

// CompactAll forces a full compaction of the engine.
func (d *Database) CompactAll() error {
	start := time.Now()
	upper := make([]byte, 64)
	for i := range upper {
		upper[i] = 0xFF
	}
	if err := d.db.Compact(nil, upper, true); err != nil {
		return errOther("", err)
	}
	d.opts.Logger.Info().Dur("duration", time.Since(start)).Msg("compacted database")
	return nil
}

// EstimatedSizes returns a best-effort on-disk size estimate per registered
// table.
func (d *Database) EstimatedSizes() (map[string]uint64, error) {
	out := make(map[string]uint64)
	for _, t := range AllTables() {
		lower, upper := tableBounds(t.ID)
		if upper == nil {
			upper = []byte{0xFF}
		}
		size, err := d.db.EstimateDiskUsage(lower, upper)
		if err != nil {
			return nil, errOther(t.Name, err)
		}
		out[t.Name] = size
	}
	return out, nil
}

// Diagnostics reports engine and library counters for operator tooling (A6).
func (d *Database) Diagnostics() (Diagnostics, error) {
	sizes, err := d.EstimatedSizes()
	if err != nil {
		return Diagnostics{}, err
	}
	var total uint64
	for _, v := range sizes {
		total += v
	}
	commits := d.metrics.commits.Load()
	var avg uint64
	if commits > 0 {
		avg = d.metrics.commitNanos.Load() / commits
	}
	return Diagnostics{
		Commits:          commits,
		Aborts:           d.metrics.aborts.Load(),
		AverageCommitNs:  avg,
		CursorOperations: d.metrics.cursorOps.Load(),
		TableSizes:       sizes,
		EngineDiskUsage:  total,
	}, nil
}

// Close releases the engine and its cache.
func (d *Database) Close() error {
	var err error
	if d.db != nil {
		err = d.db.Close()
		d.db = nil
	}
	if d.cache != nil {
		d.cache.Unref()
		d.cache = nil
	}
	return err
}

// tableBounds returns the [lower, upper) key range covering every physical
// key belonging to table id (the tableID-prefix emulation of a column
// family, DESIGN.md Open Question #2). upper is nil when id is the last
// possible table ID, meaning "to the end of the keyspace".
func tableBounds(id TableID) (lower, upper []byte) {
	lower = []byte{id}
	if id == 0xFF {
		return lower, nil
	}
	return lower, []byte{id + 1}
}
