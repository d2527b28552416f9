package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/progress"
)

// programRef is a shared reference to the tea.Program.
// Because bubbletea copies the model on every Update, we need a pointer
// that survives copies so the bridge goroutines can send messages.
type programRef struct {
	mu      sync.RWMutex
	program *tea.Program
}

// SetProgram sets the tea.Program reference (thread-safe).
func (r *programRef) SetProgram(p *tea.Program) {
	r.mu.Lock()
	r.program = p
	r.mu.Unlock()
}

// Send sends a message to the bubbletea program. It is a no-op until
// SetProgram has been called.
func (r *programRef) Send(msg tea.Msg) {
	r.mu.RLock()
	p := r.program
	r.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}

// TUIProgressReporter drains the progress channel and forwards updates as
// ProgressMsg.
type TUIProgressReporter struct {
	ref        *programRef
	generation uint64
}

// TUIResultPresenter sends the benchmark report and errors to the
// dashboard instead of writing them.
type TUIResultPresenter struct {
	ref        *programRef
	generation uint64
}

var (
	_ orchestration.ProgressReporter   = (*TUIProgressReporter)(nil)
	_ orchestration.BenchmarkPresenter = (*TUIResultPresenter)(nil)
	_ orchestration.ErrorHandler       = (*TUIResultPresenter)(nil)
)

// DisplayProgress forwards every update, then sends ProgressDoneMsg.
func (t *TUIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, _ io.Writer) {
	defer wg.Done()

	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	for update := range progressChan {
		ap := agg.Update(update)
		t.ref.Send(ProgressMsg{
			CalculatorIndex: ap.CalculatorIndex,
			Value:           ap.Value,
			AverageProgress: ap.AverageProgress,
			ETA:             ap.ETA,
			Generation:      t.generation,
		})
	}
	t.ref.Send(ProgressDoneMsg{})
}

// PresentBenchmark sends the report to the dashboard.
func (t *TUIResultPresenter) PresentBenchmark(report orchestration.BenchmarkReport, _ io.Writer) {
	t.ref.Send(BenchmarkReportMsg{Report: report, Generation: t.generation})
}

// HandleError sends an error message to the TUI and returns the exit code.
func (t *TUIResultPresenter) HandleError(err error, duration time.Duration, _ io.Writer) int {
	t.ref.Send(ErrorMsg{Err: err, Duration: duration, Generation: t.generation})
	return apperrors.ExitCodeFor(err)
}
