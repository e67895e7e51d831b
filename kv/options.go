package kv

import "github.com/rs/zerolog"

// Options configures Open (C4): a single fixed engine (Pebble) instead of a
// backend-type switch, since the engine choice is fixed to an LSM engine
// (see DESIGN.md Open Question #1).
type Options struct {
	// Path is the engine directory.
	Path string

	// CreateIfMissing creates the directory and a fresh engine if Path does
	// not already contain one.
	CreateIfMissing bool

	// MaxOpenFiles bounds the number of open SST files.
	MaxOpenFiles int

	// DirectIO is a best-effort toggle recorded for diagnostics; Pebble's
	// default VFS already avoids double-buffering through the page cache,
	// so this does not change I/O behavior today.
	DirectIO bool

	// CacheSizeBytes sizes Pebble's block cache. Zero leaves Pebble's own
	// default block cache in place.
	CacheSizeBytes int64

	// Logger receives structured open/compact/schema-version events (A1).
	// The zero value is a disabled logger (silent).
	Logger zerolog.Logger
}

// DefaultOptions returns sane defaults for opening a database at path.
func DefaultOptions(path string) Options {
	return Options{
		Path:            path,
		CreateIfMissing: true,
		MaxOpenFiles:    1024,
		CacheSizeBytes:  64 << 20,
		Logger:          zerolog.Nop(),
	}
}
