package kv

import "github.com/cockroachdb/pebble"

// buildComparer returns a Pebble comparer whose Split function reports a
// fixed-length prefix for dup-sort tables (tableID || encode(key)) so that
// Pebble's prefix bloom filters and iteration acceleration cluster all
// sub-keys of one logical key together, emulating the fixed-length prefix
// extractor a dup-sort table needs on an engine with native column families.
// Non-dup-sort tables report the whole key as their own prefix (no
// clustering benefit needed beyond exact-key lookups).
func buildComparer(tables []TableMeta) *pebble.Comparer {
	var dupLen [256]int
	for _, t := range tables {
		if t.IsDupSort && t.DupKeyLen > 0 {
			dupLen[t.ID] = 1 + t.DupKeyLen // + 1 for the leading tableID byte
		}
	}

	cmp := *pebble.DefaultComparer
	cmp.Name = "triekv.tableprefix.v1"
	cmp.Split = func(key []byte) int {
		if len(key) == 0 {
			return 0
		}
		id := key[0]
		if n := dupLen[id]; n > 0 && n <= len(key) {
			return n
		}
		return len(key)
	}
	return &cmp
}
