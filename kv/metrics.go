package kv

import (
	"sync/atomic"
	"time"
)

// metricsState tracks process-local counters surfaced through
// (*Database).Diagnostics: the same kind of counters a benchmark run would
// hold, kept instead for the lifetime of a long-lived database instance.
type metricsState struct {
	commits       atomic.Uint64
	commitNanos   atomic.Uint64
	aborts        atomic.Uint64
	cursorOps     atomic.Uint64
}

func newMetricsState() *metricsState { return &metricsState{} }

func (m *metricsState) recordCommit(d time.Duration) {
	m.commits.Add(1)
	m.commitNanos.Add(uint64(d.Nanoseconds()))
}

func (m *metricsState) recordAbort() { m.aborts.Add(1) }

func (m *metricsState) recordCursorOp() { m.cursorOps.Add(1) }

// Diagnostics summarizes engine and library-level counters for an operator.
type Diagnostics struct {
	Commits          uint64
	Aborts           uint64
	AverageCommitNs  uint64
	CursorOperations uint64
	TableSizes       map[string]uint64
	EngineDiskUsage  uint64
}
