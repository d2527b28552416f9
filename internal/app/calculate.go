package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/fibengine/internal/cli"
	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/ui"
)

// runCalculate computes F(N), or a batch of Count elements with --batch,
// on every selected calculator and compares the results. ctx carries the
// --timeout deadline set by Run.
func (a *Application) runCalculate(ctx context.Context, registry *fibonacci.Registry, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculatorsToRun := orchestration.GetCalculatorsToRun(a.Config.Algo, registry)

	if !a.Config.Quiet {
		cli.PrintExecutionConfig(ctx, a.Config, out)
		cli.PrintExecutionMode(calculatorsToRun, out)
	}

	var progressReporter orchestration.ProgressReporter
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	req := orchestration.Request{
		N:     a.Config.Index(),
		Count: a.Config.BatchCount(),
		Batch: a.Config.Batch,
	}
	results := orchestration.ExecuteCalculations(ctx, calculatorsToRun, req, progressReporter, progressOut)

	opts := orchestration.PresentationOptions{
		Request: req,
		Policy:  a.Config.OverflowPolicy(),
		Verbose: a.Config.Verbose,
		Exact:   a.Config.Exact,
	}
	return a.analyzeResultsWithOutput(results, opts, out)
}

func (a *Application) analyzeResultsWithOutput(results []orchestration.CalculationResult, opts orchestration.PresentationOptions, out io.Writer) int {
	presenter := cli.CLIResultPresenter{}

	if a.Config.Quiet {
		best := findBestResult(results)
		if best == nil {
			return presenter.HandleError(firstError(results), 0, a.ErrWriter)
		}
		cli.DisplayQuietResult(out, *best, opts.Batch)
		if err := a.saveResultIfNeeded(best, opts); err != nil {
			return apperrors.ExitErrorGeneric
		}
		return apperrors.ExitSuccess
	}

	exitCode := orchestration.AnalyzeComparisonResults(results, opts, presenter, presenter, out)

	if best := findBestResult(results); best != nil && exitCode == apperrors.ExitSuccess {
		if err := a.saveResultIfNeeded(best, opts); err != nil {
			return apperrors.ExitErrorGeneric
		}
		if a.Config.OutputFile != "" {
			fmt.Fprintf(out, "\n%s✓ Result saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
		}
	}
	return exitCode
}

func findBestResult(results []orchestration.CalculationResult) *orchestration.CalculationResult {
	var bestResult *orchestration.CalculationResult
	for i := range results {
		if results[i].Err == nil {
			if bestResult == nil || results[i].Duration < bestResult.Duration {
				bestResult = &results[i]
			}
		}
	}
	return bestResult
}

func firstError(results []orchestration.CalculationResult) error {
	for _, r := range results {
		if r.Err != nil {
			return apperrors.CalculationError{Algorithm: r.Name, Cause: r.Err}
		}
	}
	return nil
}

func (a *Application) saveResultIfNeeded(res *orchestration.CalculationResult, opts orchestration.PresentationOptions) error {
	if a.Config.OutputFile == "" {
		return nil
	}
	if err := cli.WriteResultToFile(a.Config.OutputFile, *res, opts); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error saving result: %v\n", err)
		return err
	}
	return nil
}
