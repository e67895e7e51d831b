package kv

import "bytes"

// dupDelimiter is the reserved byte separating a dup-sort table's logical
// key from its sub-key in the composite on-disk key. SplitDup splits at the
// first 0xFF, so it recovers the parts only when encode(key) contains no
// 0xFF. This module's dup-sort keys are fixed-length 32-byte hashes, which
// can contain 0xFF; DupCursor therefore splits their composites at the
// table's DupKeyLen instead.
const dupDelimiter = 0xFF

// ComposeDup returns the composite key encode(key) || 0xFF || encode(subKey)
// used to emulate a dup-sort table on an engine that only supports unique
// keys.
func ComposeDup(encodedKey, encodedSubKey []byte) []byte {
	out := make([]byte, 0, len(encodedKey)+1+len(encodedSubKey))
	out = append(out, encodedKey...)
	out = append(out, dupDelimiter)
	out = append(out, encodedSubKey...)
	return out
}

// SplitDup splits a composite key at the first 0xFF byte, returning the
// encoded key and encoded sub-key portions.
func SplitDup(composite []byte) (encodedKey, encodedSubKey []byte, err error) {
	i := bytes.IndexByte(composite, dupDelimiter)
	if i < 0 {
		return nil, nil, &DecodeError{Type: "composite-key", Err: errNoDelimiter}
	}
	return composite[:i], composite[i+1:], nil
}

// PrefixDup returns encode(key) || 0xFF, the prefix that bounds a scan over
// all sub-keys of one logical key in a dup-sort table.
func PrefixDup(encodedKey []byte) []byte {
	out := make([]byte, 0, len(encodedKey)+1)
	out = append(out, encodedKey...)
	out = append(out, dupDelimiter)
	return out
}

var errNoDelimiter = errDupDelimiterMissing{}

type errDupDelimiterMissing struct{}

func (errDupDelimiterMissing) Error() string { return "composite key has no 0xFF delimiter" }
