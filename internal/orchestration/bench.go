package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/metrics"
	"github.com/agbru/fibengine/internal/progress"
)

// ErrInconsistentBatch is recorded when a calculator's batch contains a
// value other than its own single result.
var ErrInconsistentBatch = errors.New("batch elements differ from the single result")

// singleShare is the part of a calculator's progress bar attributed to the
// single call; the batch fills the rest.
const singleShare = 0.1

// BenchmarkSpec describes one benchmark run.
type BenchmarkSpec struct {
	N     uint32
	Count uint32
	// Parallelism is the number of calculators timed at once. Values below
	// 1 mean 1, which keeps timings and allocation deltas undisturbed.
	Parallelism int
	// Baseline names the calculator speedups are measured against.
	Baseline string
	// GCMode controls the garbage collector during the run.
	GCMode metrics.GCMode
}

// BenchmarkResult is the timing of one calculator.
type BenchmarkResult struct {
	Name string
	// Value is the single-call result.
	Value uint32
	// Single is the wall time of Fibonacci(N).
	Single time.Duration
	// Batch is the wall time of Batch(Count, N).
	Batch time.Duration
	// BatchAlloc is the allocation cost of the batch call.
	BatchAlloc metrics.AllocDelta
	Err        error
}

// BenchmarkRow is a result with its speedups relative to the baseline.
// Speedups are zero when either side has no timing.
type BenchmarkRow struct {
	BenchmarkResult
	SingleSpeedup float64
	BatchSpeedup  float64
}

// BenchmarkReport is what a BenchmarkPresenter receives.
type BenchmarkReport struct {
	Spec     BenchmarkSpec
	Baseline string
	Rows     []BenchmarkRow
}

// RunBenchmark times a single call and a batch call for every calculator.
// Calculators run Parallelism at a time on an errgroup; a failure is
// recorded in the result and does not stop the others.
func RunBenchmark(ctx context.Context, calculators []fibonacci.Calculator, spec BenchmarkSpec, progressReporter ProgressReporter, out io.Writer) []BenchmarkResult {
	results := make([]BenchmarkResult, len(calculators))
	progressChan := make(chan progress.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	gc := metrics.NewGCController(spec.GCMode, uint64(spec.Count))
	gc.Begin()
	defer gc.End()

	var g errgroup.Group
	g.SetLimit(max(spec.Parallelism, 1))
	collector := metrics.NewMemoryCollector()
	for i, calc := range calculators {
		g.Go(func() error {
			res := benchmarkOne(ctx, calc, spec, collector, progress.ChannelCallback(progressChan, i))
			res.Err = withCause(ctx, res.Err)
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()
	return results
}

func benchmarkOne(ctx context.Context, calc fibonacci.Calculator, spec BenchmarkSpec, collector *metrics.MemoryCollector, report progress.ProgressCallback) BenchmarkResult {
	res := BenchmarkResult{Name: calc.Name()}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	start := time.Now()
	res.Value, res.Err = calc.Fibonacci(ctx, spec.N)
	res.Single = time.Since(start)
	if res.Err != nil {
		return res
	}
	report(singleShare)

	var batch []uint32
	onBatch := func(f float64) { report(singleShare + (1-singleShare)*f) }
	res.Batch, res.BatchAlloc = collector.Measure(func() {
		batch, res.Err = calc.Batch(ctx, spec.Count, spec.N, onBatch)
	})
	if res.Err != nil {
		return res
	}
	if uint32(len(batch)) != spec.Count {
		res.Err = fmt.Errorf("%w: got %d elements, want %d", ErrInconsistentBatch, len(batch), spec.Count)
		return res
	}
	for i, v := range batch {
		if v != res.Value {
			res.Err = fmt.Errorf("%w: element %d is %d, single call gave %d", ErrInconsistentBatch, i, v, res.Value)
			return res
		}
	}
	report(1)
	return res
}

// AnalyzeBenchmark orders results (successes first, fastest batch first),
// checks that every successful calculator agrees, computes speedups against
// spec.Baseline and presents the report.
//
// The baseline falls back to the slowest successful calculator when
// spec.Baseline is empty or did not succeed.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch on disagreement (between
//     calculators, or within one calculator's batch), or errHandler's code
//     when every calculator failed.
func AnalyzeBenchmark(results []BenchmarkResult, spec BenchmarkSpec, presenter BenchmarkPresenter, errHandler ErrorHandler, out io.Writer) int {
	sortResults(results, func(r BenchmarkResult) (bool, time.Duration) { return r.Err == nil, r.Batch })

	report := BenchmarkReport{Spec: spec, Rows: make([]BenchmarkRow, len(results))}
	var first, baseline *BenchmarkResult
	var firstErr error
	inconsistent := false
	for i := range results {
		r := &results[i]
		report.Rows[i].BenchmarkResult = *r
		if r.Err != nil {
			if errors.Is(r.Err, ErrInconsistentBatch) {
				inconsistent = true
			}
			if firstErr == nil {
				firstErr = apperrors.CalculationError{Algorithm: r.Name, Cause: r.Err}
			}
			continue
		}
		if first == nil {
			first = r
		}
		if r.Name == spec.Baseline {
			baseline = r
		}
	}

	if first == nil {
		presenter.PresentBenchmark(report, out)
		if inconsistent {
			return apperrors.ExitErrorMismatch
		}
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the benchmark.\n")
		return errHandler.HandleError(firstErr, 0, out)
	}
	if baseline == nil {
		for i := range results {
			if results[i].Err == nil {
				baseline = &results[i]
			}
		}
	}
	report.Baseline = baseline.Name
	for i := range report.Rows {
		row := &report.Rows[i]
		if row.Err != nil {
			continue
		}
		row.SingleSpeedup = ratio(baseline.Single, row.Single)
		row.BatchSpeedup = ratio(baseline.Batch, row.Batch)
	}

	presenter.PresentBenchmark(report, out)

	if inconsistent {
		fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! A batch disagreed with its own single result.\n")
		return apperrors.ExitErrorMismatch
	}
	for _, r := range results {
		if r.Err == nil && r.Value != first.Value {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s and %s disagree on F(%d).\n", first.Name, r.Name, spec.N)
			return apperrors.ExitErrorMismatch
		}
	}
	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	return apperrors.ExitSuccess
}

func ratio(baseline, d time.Duration) float64 {
	if baseline <= 0 || d <= 0 {
		return 0
	}
	return float64(baseline) / float64(d)
}
