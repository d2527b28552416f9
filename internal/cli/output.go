// # Naming Conventions
//
//   - Display* functions write formatted output to an [io.Writer].
//   - Format* functions return a string without performing I/O.
//   - Write* functions write to the filesystem.

package cli

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/format"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/ui"
)

// DisplayResult prints a comparison winner: its value (or batch preview),
// an overflow note when F(N) does not fit in 32 bits and, with opts.Exact,
// the arbitrary precision value.
func DisplayResult(result orchestration.CalculationResult, opts orchestration.PresentationOptions, out io.Writer) {
	fmt.Fprintf(out, "\n--- Result (%s%s%s, %s) ---\n",
		ui.ColorBlue(), result.Name, ui.ColorReset(), format.FormatExecutionDuration(result.Duration))

	if opts.Batch {
		fmt.Fprintf(out, "Batch: %s%s%s elements of F(%d)\n",
			ui.ColorCyan(), format.FormatThousands(uint64(len(result.Values))), ui.ColorReset(), opts.N)
		fmt.Fprintf(out, "  %s\n", FormatBatch(result.Values, opts.Verbose))
		if opts.Verbose && len(result.Values) > 0 {
			fmt.Fprintf(out, "  Per element: %s\n", format.FormatPerOp(result.Duration, uint64(len(result.Values))))
		}
	}
	fmt.Fprintf(out, "F(%d) = %s%s%s\n", opts.N, ui.ColorGreen(), format.FormatThousands(uint64(result.Value)), ui.ColorReset())

	if fibonacci.Overflows(opts.N) {
		switch opts.Policy {
		case fibonacci.PolicySaturate:
			fmt.Fprintf(out, "%sSaturated:%s the exact value exceeds 32 bits.\n", ui.ColorYellow(), ui.ColorReset())
		default:
			fmt.Fprintf(out, "%sWrapped:%s value is F(%d) mod 2^32.\n", ui.ColorYellow(), ui.ColorReset(), opts.N)
		}
	}
	if opts.Exact {
		fmt.Fprintf(out, "Exact F(%d) = %s\n", opts.N, FormatExact(fibonacci.Exact(uint64(opts.N)), opts.Verbose))
	}
}

// FormatBatch renders a batch as a bracketed list. Without verbose only the
// first BatchPreview elements are shown.
func FormatBatch(values []uint32, verbose bool) string {
	shown := values
	if !verbose && len(values) > BatchPreview {
		shown = values[:BatchPreview]
	}
	parts := make([]string, len(shown))
	for i, v := range shown {
		parts[i] = strconv.FormatUint(uint64(v), 10)
	}
	s := "[" + strings.Join(parts, " ")
	if len(shown) < len(values) {
		s += fmt.Sprintf(" ... (%d more)", len(values)-len(shown))
	}
	return s + "]"
}

// FormatExact renders v in decimal, keeping only DisplayEdges digits at
// each end when it is longer than TruncationLimit and verbose is off.
func FormatExact(v *big.Int, verbose bool) string {
	s := v.String()
	if verbose || len(s) <= TruncationLimit {
		return s
	}
	return fmt.Sprintf("%s...%s (%d digits, truncated)", s[:DisplayEdges], s[len(s)-DisplayEdges:], len(s))
}

// FormatQuietResult is the scripting form of a result: the value, or the
// batch elements separated by spaces.
func FormatQuietResult(result orchestration.CalculationResult, batch bool) string {
	if !batch {
		return strconv.FormatUint(uint64(result.Value), 10)
	}
	return strings.Trim(FormatBatch(result.Values, true), "[]")
}

// DisplayQuietResult prints FormatQuietResult on its own line.
func DisplayQuietResult(out io.Writer, result orchestration.CalculationResult, batch bool) {
	fmt.Fprintln(out, FormatQuietResult(result, batch))
}

// WriteResultToFile writes result with a commented header to path,
// creating parent directories as needed.
func WriteResultToFile(path string, result orchestration.CalculationResult, opts orchestration.PresentationOptions) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "# Fibonacci Result\n")
	fmt.Fprintf(file, "# Generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(file, "# Algorithm: %s\n", result.Name)
	fmt.Fprintf(file, "# Duration: %s\n", result.Duration)
	fmt.Fprintf(file, "# Policy: %s\n", opts.Policy)
	fmt.Fprintf(file, "# N: %d\n", opts.N)
	if opts.Batch {
		fmt.Fprintf(file, "# Count: %d\n", len(result.Values))
	}
	fmt.Fprintf(file, "\nF(%d) = %d\n", opts.N, result.Value)
	if opts.Batch {
		for _, v := range result.Values {
			fmt.Fprintln(file, v)
		}
	}
	if opts.Exact {
		fmt.Fprintf(file, "exact = %s\n", fibonacci.Exact(uint64(opts.N)))
	}
	return file.Close()
}
