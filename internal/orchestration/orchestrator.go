package orchestration

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/progress"
)

// ProgressBufferMultiplier sizes the progress channel per calculator so
// calculators rarely find it full.
const ProgressBufferMultiplier = 5

// ExecuteCalculations runs every calculator concurrently on req and
// collects one result per calculator, in the order given. A failing
// calculator does not cancel the others.
//
// Parameters:
//   - ctx: Cancels every calculator.
//   - calculators: The implementations to compare.
//   - req: The index, and the batch size when req.Batch is set.
//   - progressReporter: Displays progress; NullProgressReporter for quiet mode.
//   - out: The writer handed to the reporter.
//
// Returns:
//   - []CalculationResult: One entry per calculator.
func ExecuteCalculations(ctx context.Context, calculators []fibonacci.Calculator, req Request, progressReporter ProgressReporter, out io.Writer) []CalculationResult {
	results := make([]CalculationResult, len(calculators))
	progressChan := make(chan progress.ProgressUpdate, len(calculators)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go progressReporter.DisplayProgress(&displayWg, progressChan, len(calculators), out)

	var g errgroup.Group
	for i, calc := range calculators {
		g.Go(func() error {
			onProgress := progress.ChannelCallback(progressChan, i)
			start := time.Now()
			res := CalculationResult{Name: calc.Name()}
			if req.Batch {
				res.Values, res.Err = calc.Batch(ctx, req.Count, req.N, onProgress)
				if res.Err == nil && len(res.Values) > 0 {
					res.Value = res.Values[0]
				}
			} else {
				res.Value, res.Err = calc.Fibonacci(ctx, req.N)
				onProgress(1)
			}
			res.Err = withCause(ctx, res.Err)
			res.Duration = time.Since(start)
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// AnalyzeComparisonResults sorts results (successes first, fastest first),
// presents the comparison table, checks that every successful calculator
// produced the same output and presents the fastest result.
//
// Returns:
//   - int: ExitSuccess, ExitErrorMismatch when outputs disagree, or the
//     code chosen by errHandler when every calculator failed.
func AnalyzeComparisonResults(results []CalculationResult, opts PresentationOptions, presenter ResultPresenter, errHandler ErrorHandler, out io.Writer) int {
	sortResults(results, func(r CalculationResult) (bool, time.Duration) { return r.Err == nil, r.Duration })

	var first *CalculationResult
	var firstErr error
	for i := range results {
		if results[i].Err != nil {
			if firstErr == nil {
				firstErr = apperrors.CalculationError{Algorithm: results[i].Name, Cause: results[i].Err}
			}
		} else if first == nil {
			first = &results[i]
		}
	}

	presenter.PresentComparisonTable(results, out)

	if first == nil {
		fmt.Fprintf(out, "\nGlobal Status: Failure. No algorithm could complete the calculation.\n")
		return errHandler.HandleError(firstErr, 0, out)
	}

	for _, res := range results {
		if res.Err == nil && (res.Value != first.Value || !slices.Equal(res.Values, first.Values)) {
			fmt.Fprintf(out, "\nGlobal Status: CRITICAL ERROR! %s and %s disagree.\n", first.Name, res.Name)
			return apperrors.ExitErrorMismatch
		}
	}

	fmt.Fprintf(out, "\nGlobal Status: Success. All valid results are consistent.\n")
	presenter.PresentResult(*first, opts, out)
	return apperrors.ExitSuccess
}

// sortResults orders successes before failures and then by duration.
// withCause replaces a context error by the cause recorded on ctx, such as
// the TimeoutError of a timed run.
func withCause(ctx context.Context, err error) error {
	if err == nil || !apperrors.IsContextError(err) {
		return err
	}
	if cause := context.Cause(ctx); cause != nil {
		return cause
	}
	return err
}

func sortResults[T any](results []T, key func(T) (ok bool, d time.Duration)) {
	sort.SliceStable(results, func(i, j int) bool {
		okI, dI := key(results[i])
		okJ, dJ := key(results[j])
		if okI != okJ {
			return okI
		}
		return dI < dJ
	})
}
