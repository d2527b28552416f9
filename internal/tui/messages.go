package tui

import (
	"time"

	"github.com/agbru/fibengine/internal/orchestration"
)

// Messages produced by a benchmark run carry the Generation of that run;
// the model drops those of a run replaced by a reset.

// ProgressMsg carries one aggregated progress update.
type ProgressMsg struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
	Generation      uint64
}

// ProgressDoneMsg is sent once the progress channel is closed.
type ProgressDoneMsg struct{}

// BenchmarkReportMsg carries the analysed benchmark.
type BenchmarkReportMsg struct {
	Report     orchestration.BenchmarkReport
	Generation uint64
}

// ErrorMsg reports a benchmark that failed as a whole.
type ErrorMsg struct {
	Err        error
	Duration   time.Duration
	Generation uint64
}

// TickMsg drives periodic sampling.
type TickMsg time.Time

// MemStatsMsg is a runtime memory sample of this process.
type MemStatsMsg struct {
	HeapAlloc    uint64
	Sys          uint64
	NumGC        uint32
	NumGoroutine int
}

// SysStatsMsg is a system-wide CPU and memory sample.
type SysStatsMsg struct {
	CPUPercent float64
	MemPercent float64
}

// CalculationCompleteMsg ends a benchmark run.
type CalculationCompleteMsg struct {
	ExitCode   int
	Generation uint64
}

// ContextCancelledMsg is sent when the run context is cancelled.
type ContextCancelledMsg struct {
	Err        error
	Generation uint64
}
