package kv

import (
	"fmt"
	"sync"
)

// TableID identifies a registered table's column-family emulation prefix
// (DESIGN.md Open Question #2: Pebble has no native column families, so
// every physical key is tableID || encode(key)).
type TableID = byte

// TableMeta describes a registered table independent of its Go key/value
// types, for use by the engine wrapper (table reconciliation, diagnostics,
// the prefix comparer) without needing generic type parameters.
type TableMeta struct {
	Name      string
	ID        TableID
	IsDupSort bool
	// DupKeyLen is the byte length of encode(key) for a dup-sort table's
	// logical key (fixed-length); used to size the prefix extractor. Zero
	// for non-dup-sort tables.
	DupKeyLen int
}

var (
	registryMu sync.Mutex
	registry   []TableMeta
	byName     = map[string]TableMeta{}
	byID       = map[TableID]TableMeta{}
)

// RegisterTable adds a table to the static compile-time registry (C3). It is
// called from package init() functions (this package's Default table, and
// the trie package's domain tables), never at runtime after Open.
func RegisterTable(m TableMeta) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if existing, ok := byID[m.ID]; ok {
		panic(fmt.Sprintf("kv: table ID %d already registered to %q, cannot register %q", m.ID, existing.Name, m.Name))
	}
	if _, ok := byName[m.Name]; ok {
		panic(fmt.Sprintf("kv: table name %q already registered", m.Name))
	}
	registry = append(registry, m)
	byName[m.Name] = m
	byID[m.ID] = m
}

// AllTables returns a snapshot of the current table registry.
func AllTables() []TableMeta {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]TableMeta, len(registry))
	copy(out, registry)
	return out
}

// TableByName looks up a registered table's metadata, for diagnostics.
func TableByName(name string) (TableMeta, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	m, ok := byName[name]
	return m, ok
}

// Table is the generic codec descriptor for a non-dup-sort table (C3). It
// carries no per-table engine options: every table shares Pebble's single
// keyspace, and Open sets no compression, write-buffer or target-file-size
// options, so Pebble's defaults apply to all tables (see DESIGN.md Open
// Question #2).
type Table[K any, V any] struct {
	Name            string
	ID              TableID
	EncodeKey       func(K) []byte
	DecodeKey       func([]byte) (K, error)
	CompressValue   func(V) []byte
	DecompressValue func([]byte) (V, error)
}

// Meta returns this table's type-erased registry metadata.
func (t Table[K, V]) Meta() TableMeta {
	return TableMeta{Name: t.Name, ID: t.ID, IsDupSort: false}
}

// DupTable is the generic descriptor for a dup-sort table: logical key K,
// intrinsic sub-key S ordering values within K, value V.
type DupTable[K any, S any, V any] struct {
	Name            string
	ID              TableID
	EncodeKey       func(K) []byte
	DecodeKey       func([]byte) (K, error)
	EncodeSubKey    func(S) []byte
	DecodeSubKey    func([]byte) (S, error)
	CompressValue   func(V) []byte
	DecompressValue func([]byte) (V, error)
	// DupKeyLen is the fixed byte length of EncodeKey's output, used to size
	// the prefix extractor.
	DupKeyLen int
}

// Meta returns this table's type-erased registry metadata.
func (t DupTable[K, S, V]) Meta() TableMeta {
	return TableMeta{Name: t.Name, ID: t.ID, IsDupSort: true, DupKeyLen: t.DupKeyLen}
}

// tableIDDefault is the reserved table for ambient keys such as db_version.
const tableIDDefault TableID = 0

func init() {
	RegisterTable(TableMeta{Name: "Default", ID: tableIDDefault, IsDupSort: false})
}
