package cli

import (
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/format"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/progress"
	"github.com/agbru/fibengine/internal/ui"
)

// CLIProgressReporter shows a spinner and progress bar.
type CLIProgressReporter struct{}

// DisplayProgress delegates to DisplayProgress.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	DisplayProgress(wg, progressChan, numCalculators, out)
}

// CLIResultPresenter renders comparison results, benchmark reports and
// errors as colored text.
type CLIResultPresenter struct{}

var (
	_ orchestration.ProgressReporter   = CLIProgressReporter{}
	_ orchestration.ResultPresenter    = CLIResultPresenter{}
	_ orchestration.BenchmarkPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler       = CLIResultPresenter{}
)

func formatDuration(d time.Duration) string {
	if d == 0 {
		return "< 1ns"
	}
	return format.FormatExecutionDuration(d)
}

// PresentComparisonTable prints one row per calculator. Padding is computed
// on the plain text so ANSI codes do not break alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.CalculationResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")

	nameW, durW := width("Algorithm"), width("Duration")
	for _, res := range results {
		nameW = max(nameW, width(res.Name))
		durW = max(durW, width(formatDuration(res.Duration)))
	}

	fmt.Fprintf(out, "%sAlgorithm%s%s   %sDuration%s%s   %sStatus%s\n",
		ui.ColorUnderline(), ui.ColorReset(), pad(nameW-width("Algorithm")),
		ui.ColorUnderline(), ui.ColorReset(), pad(durW-width("Duration")),
		ui.ColorUnderline(), ui.ColorReset())
	for _, res := range results {
		status := fmt.Sprintf("%s✅ Success%s", ui.ColorGreen(), ui.ColorReset())
		if res.Err != nil {
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorRed(), res.Err, ui.ColorReset())
		}
		dur := formatDuration(res.Duration)
		fmt.Fprintf(out, "%s%s%s%s   %s%s%s%s   %s\n",
			ui.ColorBlue(), res.Name, ui.ColorReset(), pad(nameW-width(res.Name)),
			ui.ColorYellow(), dur, ui.ColorReset(), pad(durW-width(dur)),
			status)
	}
}

// PresentResult delegates to DisplayResult.
func (CLIResultPresenter) PresentResult(result orchestration.CalculationResult, opts orchestration.PresentationOptions, out io.Writer) {
	DisplayResult(result, opts, out)
}

// PresentBenchmark prints the timing table and the speedups against the
// baseline.
func (CLIResultPresenter) PresentBenchmark(report orchestration.BenchmarkReport, out io.Writer) {
	fmt.Fprintf(out, "\n--- Benchmark: F(%d), batch of %s ---\n", report.Spec.N, format.FormatThousands(uint64(report.Spec.Count)))

	headers := []string{"Algorithm", "Single", "Batch", "Per element", "Allocated", "Speedup"}
	rows := make([][]string, 0, len(report.Rows))
	for _, r := range report.Rows {
		if r.Err != nil {
			rows = append(rows, []string{r.Name, "-", "-", "-", "-", "failed: " + r.Err.Error()})
			continue
		}
		speedup := format.FormatSpeedup(r.BatchSpeedup, 1)
		if r.Name == report.Baseline {
			speedup = "baseline"
		}
		rows = append(rows, []string{
			r.Name,
			formatDuration(r.Single),
			formatDuration(r.Batch),
			format.FormatPerOp(r.Batch, uint64(report.Spec.Count)),
			format.FormatBytes(r.BatchAlloc.Bytes),
			speedup,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = width(h)
	}
	for _, row := range rows {
		for i, cell := range row[:len(row)-1] {
			widths[i] = max(widths[i], width(cell))
		}
	}

	for i, h := range headers {
		fmt.Fprintf(out, "%s%s%s%s", ui.ColorUnderline(), h, ui.ColorReset(), pad(widths[i]-width(h)+3))
	}
	fmt.Fprintln(out)
	for ri, row := range rows {
		color := ui.ColorYellow()
		if report.Rows[ri].Err != nil {
			color = ui.ColorRed()
		}
		fmt.Fprintf(out, "%s%s%s%s", ui.ColorBlue(), row[0], ui.ColorReset(), pad(widths[0]-width(row[0])+3))
		for i := 1; i < len(row); i++ {
			fmt.Fprintf(out, "%s%s%s%s", color, row[i], ui.ColorReset(), pad(widths[i]-width(row[i])+3))
		}
		fmt.Fprintln(out)
	}

	for _, r := range report.Rows {
		if r.Err == nil && r.Name != report.Baseline && r.BatchSpeedup > 0 {
			fmt.Fprintf(out, "%s%s%s is %s%s%s the speed of %s on batches (%s on single calls).\n",
				ui.ColorBlue(), r.Name, ui.ColorReset(),
				ui.ColorGreen(), format.FormatSpeedup(r.BatchSpeedup, 1), ui.ColorReset(),
				report.Baseline, format.FormatSpeedup(r.SingleSpeedup, 1))
		}
	}
}

// FormatDuration formats d with the CLI's duration style.
func (CLIResultPresenter) FormatDuration(d time.Duration) string {
	return formatDuration(d)
}

// HandleError reports err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	return apperrors.HandleCalculationError(err, duration, out, CLIColorProvider{})
}

// width is the display width of s, counting runes.
func width(s string) int { return utf8.RuneCountInString(s) }

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf("%*s", n, "")
}
