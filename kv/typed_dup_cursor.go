package kv

import (
	"bytes"
	"iter"
)

// DupValue bundles a dup-sort entry's sub-key and value, the second element
// of the (K, DupValue[S, V]) pairs WalkDup yields.
type DupValue[S any, V any] struct {
	Sub   S
	Value V
}

// DupCursor is the typed ordered cursor over a dup-sort table (C6). The
// underlying physical key is the composite encode(key) || 0xFF ||
// encode(subKey) (kv/dupsort.go); DupCursor splits it back into (key,
// subKey) on every read and tracks the decoded logical key as "current".
type DupCursor[K any, S any, V any] struct {
	raw   RawCursor
	rw    RawCursorRW
	table DupTable[K, S, V]

	current *K
	err     error
}

// Err returns the error, if any, that stopped the most recent WalkDup
// iteration.
func (c *DupCursor[K, S, V]) Err() error { return c.err }

// Close releases the cursor's resources.
func (c *DupCursor[K, S, V]) Close() error { return c.raw.Close() }

func (c *DupCursor[K, S, V]) decode(k, v []byte) (K, S, V, error) {
	var zk K
	var zs S
	var zv V
	encKey, encSub, err := SplitDup(k)
	if n := c.table.DupKeyLen; n > 0 && len(k) > n && k[n] == dupDelimiter {
		encKey, encSub, err = k[:n], k[n+1:], nil
	}
	if err != nil {
		return zk, zs, zv, errDecode(c.table.Name, err)
	}
	key, err := c.table.DecodeKey(encKey)
	if err != nil {
		return zk, zs, zv, errDecode(c.table.Name, err)
	}
	sub, err := c.table.DecodeSubKey(encSub)
	if err != nil {
		return zk, zs, zv, errDecode(c.table.Name, err)
	}
	val, err := c.table.DecompressValue(v)
	if err != nil {
		return zk, zs, zv, errDecode(c.table.Name, err)
	}
	return key, sub, val, nil
}

func (c *DupCursor[K, S, V]) wrap(k, v []byte, ok bool, err error) (K, S, V, bool, error) {
	var zk K
	var zs S
	var zv V
	if err != nil || !ok {
		return zk, zs, zv, false, err
	}
	key, sub, val, derr := c.decode(k, v)
	if derr != nil {
		return zk, zs, zv, false, derr
	}
	c.current = &key
	return key, sub, val, true, nil
}

func (c *DupCursor[K, S, V]) sameKey(a, b K) bool {
	return bytes.Equal(c.table.EncodeKey(a), c.table.EncodeKey(b))
}

// First positions at the first (key, subKey) entry in the table.
func (c *DupCursor[K, S, V]) First() (K, S, V, bool, error) { return c.wrap(c.raw.First()) }

// Last positions at the last (key, subKey) entry in the table.
func (c *DupCursor[K, S, V]) Last() (K, S, V, bool, error) { return c.wrap(c.raw.Last()) }

// Seek positions at the first entry whose logical key is >= key, landing on
// that key's smallest sub-key.
func (c *DupCursor[K, S, V]) Seek(key K) (K, S, V, bool, error) {
	return c.wrap(c.raw.Seek(PrefixDup(c.table.EncodeKey(key))))
}

// SeekExact positions only if key has at least one entry, landing on its
// smallest sub-key; unchanged on miss.
func (c *DupCursor[K, S, V]) SeekExact(key K) (K, S, V, bool, error) {
	k, v, ok, err := c.raw.Seek(PrefixDup(c.table.EncodeKey(key)))
	if err != nil || !ok {
		return c.wrap(k, v, false, err)
	}
	if !bytes.HasPrefix(k, PrefixDup(c.table.EncodeKey(key))) {
		var zk K
		var zs S
		var zv V
		return zk, zs, zv, false, nil
	}
	return c.wrap(k, v, true, nil)
}

// SeekByKeySubkey looks up the exact composite (key, subKey); it sets the
// current key on a hit and leaves the position unchanged on a miss.
func (c *DupCursor[K, S, V]) SeekByKeySubkey(key K, subKey S) (K, S, V, bool, error) {
	composite := ComposeDup(c.table.EncodeKey(key), c.table.EncodeSubKey(subKey))
	return c.wrap(c.raw.SeekExact(composite))
}

// SeekByKeyForward positions at the first entry whose composite key is >=
// (key, subKey) in composite order, which may land on a different logical
// key if key's sub-keys are exhausted. Used by trie cursors to implement
// "first path >= target" within one logical key, with the caller
// responsible for checking the returned key still matches.
func (c *DupCursor[K, S, V]) SeekByKeyForward(key K, subKey S) (K, S, V, bool, error) {
	composite := ComposeDup(c.table.EncodeKey(key), c.table.EncodeSubKey(subKey))
	return c.wrap(c.raw.Seek(composite))
}

// Next advances to the next composite entry, regardless of logical key.
func (c *DupCursor[K, S, V]) Next() (K, S, V, bool, error) { return c.wrap(c.raw.Next()) }

// Prev retreats to the previous composite entry, regardless of logical key.
func (c *DupCursor[K, S, V]) Prev() (K, S, V, bool, error) { return c.wrap(c.raw.Prev()) }

// Current returns the entry at the current position without moving.
func (c *DupCursor[K, S, V]) Current() (K, S, V, bool, error) { return c.wrap(c.raw.Current()) }

// NextDup advances within the current logical key's group of sub-keys. It
// reports ok=false once the group is exhausted; the underlying position has
// then moved onto the next logical key's first entry, which becomes the
// current key. That entry is not returned, and a subsequent NextNoDup or
// Next moves past it; Current returns it.
func (c *DupCursor[K, S, V]) NextDup() (S, V, bool, error) {
	var zs S
	var zv V
	if c.current == nil {
		return zs, zv, false, nil
	}
	k, v, ok, err := c.raw.Next()
	if err != nil {
		return zs, zv, false, err
	}
	if !ok {
		c.current = nil
		return zs, zv, false, nil
	}
	key, sub, val, derr := c.decode(k, v)
	if derr != nil {
		return zs, zv, false, derr
	}
	if !c.sameKey(key, *c.current) {
		c.current = &key
		return zs, zv, false, nil
	}
	return sub, val, true, nil
}

// NextDupVal is NextDup discarding the sub-key.
func (c *DupCursor[K, S, V]) NextDupVal() (V, bool, error) {
	_, v, ok, err := c.NextDup()
	return v, ok, err
}

// NextNoDup advances to the first entry of the next logical key, skipping
// any remaining sub-keys of the current one.
func (c *DupCursor[K, S, V]) NextNoDup() (K, S, V, bool, error) {
	var zk K
	var zs S
	var zv V
	for {
		k, v, ok, err := c.raw.Next()
		if err != nil {
			return zk, zs, zv, false, err
		}
		if !ok {
			c.current = nil
			return zk, zs, zv, false, nil
		}
		key, sub, val, derr := c.decode(k, v)
		if derr != nil {
			return zk, zs, zv, false, derr
		}
		if c.current == nil || !c.sameKey(key, *c.current) {
			c.current = &key
			return key, sub, val, true, nil
		}
	}
}

// Upsert writes (key, subKey) -> value, overwriting any existing value at
// that exact sub-key.
func (c *DupCursor[K, S, V]) Upsert(key K, subKey S, value V) error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	composite := ComposeDup(c.table.EncodeKey(key), c.table.EncodeSubKey(subKey))
	return c.rw.Upsert(composite, c.table.CompressValue(value))
}

// AppendDup writes (key, subKey) -> value assuming the composite key is
// greater than every previously appended composite key in this table.
func (c *DupCursor[K, S, V]) AppendDup(key K, subKey S, value V) error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	composite := ComposeDup(c.table.EncodeKey(key), c.table.EncodeSubKey(subKey))
	return c.rw.Append(composite, c.table.CompressValue(value))
}

// DeleteCurrent removes the entry at the current position.
func (c *DupCursor[K, S, V]) DeleteCurrent() error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	return c.rw.DeleteCurrent()
}

// DeleteCurrentDuplicates removes every remaining sub-key of the current
// logical key, starting from the current position.
func (c *DupCursor[K, S, V]) DeleteCurrentDuplicates() error {
	if c.rw == nil {
		return errOther(c.table.Name, errReadOnlyCursor)
	}
	if c.current == nil {
		return errOther(c.table.Name, errNoCurrentPosition)
	}
	target := *c.current
	for {
		key, _, _, ok, err := c.Current()
		if err != nil {
			return err
		}
		if !ok || !c.sameKey(key, target) {
			return nil
		}
		if err := c.rw.DeleteCurrent(); err != nil {
			return err
		}
	}
}

// WalkDup returns a lazy forward sequence over the whole table in composite
// order, starting from the given (key, subKey) position (nil fields start
// at the beginning). Iterate with a range loop; check Err() afterwards.
func (c *DupCursor[K, S, V]) WalkDup(key *K, subKey *S) iter.Seq2[K, DupValue[S, V]] {
	return func(yield func(K, DupValue[S, V]) bool) {
		c.err = nil
		var k K
		var s S
		var v V
		var ok bool
		var err error
		switch {
		case key != nil && subKey != nil:
			k, s, v, ok, err = c.SeekByKeySubkey(*key, *subKey)
		case key != nil:
			k, s, v, ok, err = c.Seek(*key)
		default:
			k, s, v, ok, err = c.First()
		}
		for {
			if err != nil {
				c.err = err
				return
			}
			if !ok {
				return
			}
			if !yield(k, DupValue[S, V]{Sub: s, Value: v}) {
				return
			}
			k, s, v, ok, err = c.Next()
		}
	}
}
