package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/progress"
)

// CalculationResult is the outcome of one calculator in a comparison run.
type CalculationResult struct {
	// Name is the calculator's registry name.
	Name string
	// Value is F(n). In batch mode it is the first element.
	Value uint32
	// Values holds the batch in batch mode and is nil otherwise.
	Values []uint32
	// Duration is the wall time of the call.
	Duration time.Duration
	// Err is set when the calculator failed.
	Err error
}

// Request selects what ExecuteCalculations asks each calculator for.
type Request struct {
	N     uint32
	Count uint32
	Batch bool
}

// PresentationOptions configures how a comparison result is shown.
type PresentationOptions struct {
	Request
	Policy  fibonacci.Policy
	Verbose bool
	// Exact adds the arbitrary precision value of F(N).
	Exact bool
}

// ProgressReporter displays progress updates while calculators run.
type ProgressReporter interface {
	// DisplayProgress consumes progressChan until it is closed and then
	// calls wg.Done. It runs on its own goroutine.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer)
}

// ProgressReporterFunc adapts a function to ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer)

// DisplayProgress calls f.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	f(wg, progressChan, numCalculators, out)
}

// NullProgressReporter drains the channel without output. Used in quiet
// mode and tests.
type NullProgressReporter struct{}

// DisplayProgress drains progressChan.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter shows comparison results.
type ResultPresenter interface {
	PresentComparisonTable(results []CalculationResult, out io.Writer)
	PresentResult(result CalculationResult, opts PresentationOptions, out io.Writer)
}

// BenchmarkPresenter shows a benchmark report.
type BenchmarkPresenter interface {
	PresentBenchmark(report BenchmarkReport, out io.Writer)
}

// ErrorHandler turns a calculation error into an exit code.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}
