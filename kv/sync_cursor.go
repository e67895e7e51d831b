package kv

import (
	"iter"
	"sync"
)

// SyncCursor wraps a Cursor for explicit, opt-in sharing across goroutines.
// It is never constructed implicitly — a caller that needs to hand one
// cursor to several goroutines wraps it itself with NewSyncCursor.
type SyncCursor[K any, V any] struct {
	mu *sync.Mutex
	c  *Cursor[K, V]
}

// NewSyncCursor wraps c for concurrent use. c must not be used directly
// afterwards.
func NewSyncCursor[K any, V any](c *Cursor[K, V]) *SyncCursor[K, V] {
	return &SyncCursor[K, V]{mu: &sync.Mutex{}, c: c}
}

func (s *SyncCursor[K, V]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Err()
}

func (s *SyncCursor[K, V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Close()
}

func (s *SyncCursor[K, V]) First() (K, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.First()
}

func (s *SyncCursor[K, V]) Last() (K, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Last()
}

func (s *SyncCursor[K, V]) Seek(key K) (K, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Seek(key)
}

func (s *SyncCursor[K, V]) SeekExact(key K) (K, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SeekExact(key)
}

func (s *SyncCursor[K, V]) Next() (K, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Next()
}

func (s *SyncCursor[K, V]) Prev() (K, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Prev()
}

func (s *SyncCursor[K, V]) Current() (K, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Current()
}

func (s *SyncCursor[K, V]) Upsert(key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Upsert(key, value)
}

func (s *SyncCursor[K, V]) Insert(key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Insert(key, value)
}

func (s *SyncCursor[K, V]) Append(key K, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Append(key, value)
}

func (s *SyncCursor[K, V]) DeleteCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteCurrent()
}

// Walk holds the lock for the entire iteration, since the underlying
// Cursor is not safe for concurrent use mid-walk. Callers that need
// finer-grained interleaving should drive First/Next themselves.
func (s *SyncCursor[K, V]) Walk(start *K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for k, v := range s.c.Walk(start) {
			if !yield(k, v) {
				return
			}
		}
	}
}

// WalkRange holds the lock for the entire iteration; see Walk.
func (s *SyncCursor[K, V]) WalkRange(r Range[K]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for k, v := range s.c.WalkRange(r) {
			if !yield(k, v) {
				return
			}
		}
	}
}

// WalkBack holds the lock for the entire iteration; see Walk.
func (s *SyncCursor[K, V]) WalkBack(start *K) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for k, v := range s.c.WalkBack(start) {
			if !yield(k, v) {
				return
			}
		}
	}
}

// SyncDupCursor wraps a DupCursor for explicit, opt-in sharing across
// goroutines, mirroring SyncCursor.
type SyncDupCursor[K any, S any, V any] struct {
	mu *sync.Mutex
	c  *DupCursor[K, S, V]
}

// NewSyncDupCursor wraps c for concurrent use. c must not be used directly
// afterwards.
func NewSyncDupCursor[K any, S any, V any](c *DupCursor[K, S, V]) *SyncDupCursor[K, S, V] {
	return &SyncDupCursor[K, S, V]{mu: &sync.Mutex{}, c: c}
}

func (s *SyncDupCursor[K, S, V]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Err()
}

func (s *SyncDupCursor[K, S, V]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Close()
}

func (s *SyncDupCursor[K, S, V]) First() (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.First()
}

func (s *SyncDupCursor[K, S, V]) Last() (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Last()
}

func (s *SyncDupCursor[K, S, V]) Seek(key K) (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Seek(key)
}

func (s *SyncDupCursor[K, S, V]) SeekExact(key K) (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SeekExact(key)
}

func (s *SyncDupCursor[K, S, V]) SeekByKeySubkey(key K, subKey S) (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SeekByKeySubkey(key, subKey)
}

func (s *SyncDupCursor[K, S, V]) SeekByKeyForward(key K, subKey S) (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.SeekByKeyForward(key, subKey)
}

func (s *SyncDupCursor[K, S, V]) Next() (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Next()
}

func (s *SyncDupCursor[K, S, V]) Prev() (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Prev()
}

func (s *SyncDupCursor[K, S, V]) Current() (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Current()
}

func (s *SyncDupCursor[K, S, V]) NextDup() (S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.NextDup()
}

func (s *SyncDupCursor[K, S, V]) NextDupVal() (V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.NextDupVal()
}

func (s *SyncDupCursor[K, S, V]) NextNoDup() (K, S, V, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.NextNoDup()
}

func (s *SyncDupCursor[K, S, V]) Upsert(key K, subKey S, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.Upsert(key, subKey, value)
}

func (s *SyncDupCursor[K, S, V]) AppendDup(key K, subKey S, value V) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.AppendDup(key, subKey, value)
}

func (s *SyncDupCursor[K, S, V]) DeleteCurrent() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteCurrent()
}

func (s *SyncDupCursor[K, S, V]) DeleteCurrentDuplicates() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.c.DeleteCurrentDuplicates()
}

// WalkDup holds the lock for the entire iteration; see SyncCursor.Walk.
func (s *SyncDupCursor[K, S, V]) WalkDup(key *K, subKey *S) iter.Seq2[K, DupValue[S, V]] {
	return func(yield func(K, DupValue[S, V]) bool) {
		s.mu.Lock()
		defer s.mu.Unlock()
		for k, dv := range s.c.WalkDup(key, subKey) {
			if !yield(k, dv) {
				return
			}
		}
	}
}
