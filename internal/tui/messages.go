package tui

import (
	"time"

	"github.com/agbru/hashprobe/internal/collision"
)

// Messages sent by the bridge carry the generation of the run that produced
// them, so that a restarted dashboard can drop those of an abandoned run.

// ProgressMsg carries one aggregated progress update from the bridge.
type ProgressMsg struct {
	Generation      uint64
	WorkerIndex     int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	Processed       int64
	Collisions      int64
	Failures        int64
	WorkersDone     int
	// WorkerDone is set when this update is the worker's final one.
	WorkerDone bool
}

// ProgressDoneMsg is sent once the progress channel has been closed.
type ProgressDoneMsg struct {
	Generation uint64
}

// ReportMsg carries the final report of a successful run.
type ReportMsg struct {
	Report     collision.Report
	Generation uint64
}

// ErrorMsg carries a run error.
type ErrorMsg struct {
	Err        error
	Duration   time.Duration
	Generation uint64
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg is a runtime memory sample.
type MemStatsMsg struct {
	Alloc        uint64
	HeapSys      uint64
	NumGC        uint32
	PauseTotalNs uint64
	NumGoroutine int
}

// SysStatsMsg is a system and process sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
	RSS        uint64
	Children   int
}

// RunCompleteMsg reports the exit code of a finished run.
type RunCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the run context is canceled.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
