package cli

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"

	"golang.org/x/sys/cpu"

	"github.com/agbru/fibengine/internal/config"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/format"
	"github.com/agbru/fibengine/internal/sysmon"
	"github.com/agbru/fibengine/internal/ui"
)

// PrintExecutionConfig shows what is about to be computed and on which
// machine.
func PrintExecutionConfig(ctx context.Context, cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	target := fmt.Sprintf("%sF(%d)%s", ui.ColorCyan(), cfg.N, ui.ColorReset())
	if cfg.Batch || cfg.Bench || cfg.TUI {
		target = fmt.Sprintf("%s%s%s x %s", ui.ColorCyan(), format.FormatThousands(cfg.Count), ui.ColorReset(), target)
	}
	fmt.Fprintf(out, "Computing %s under the %s%s%s overflow policy, timeout %s%s%s.\n",
		target, ui.ColorYellow(), cfg.OverflowPolicy(), ui.ColorReset(), ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	if fibonacci.Overflows(cfg.Index()) {
		fmt.Fprintf(out, "%sNote:%s F(%d) exceeds 32 bits (largest exact index is %d).\n",
			ui.ColorYellow(), ui.ColorReset(), cfg.N, fibonacci.MaxExactIndex)
	}
	PrintEnvironment(ctx, out)
	if cfg.Batch || cfg.Bench || cfg.TUI {
		fmt.Fprintf(out, "Batch workers: %s%d%s.\n", ui.ColorCyan(), cfg.Workers, ui.ColorReset())
	}
}

// PrintEnvironment describes the host: CPU model and features, core count
// and Go version.
func PrintEnvironment(ctx context.Context, out io.Writer) {
	host := sysmon.Describe(ctx)
	fmt.Fprintf(out, "Environment: %s%s%s, %s%d%s logical processors, Go %s on %s/%s.\n",
		ui.ColorCyan(), host.CPUModel, ui.ColorReset(),
		ui.ColorCyan(), host.Cores, ui.ColorReset(),
		runtime.Version(), runtime.GOOS, runtime.GOARCH)
	if features := CPUFeatures(); len(features) > 0 {
		fmt.Fprintf(out, "CPU features: %s.\n", strings.Join(features, " "))
	}
}

// CPUFeatures lists the instruction set extensions relevant to the native
// and WebAssembly runtimes (wazero's compiler uses SSE4.1 on amd64 and
// ASIMD on arm64).
func CPUFeatures() []string {
	var features []string
	add := func(ok bool, name string) {
		if ok {
			features = append(features, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasPOPCNT, "popcnt")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasBMI2, "bmi2")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasATOMICS, "atomics")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return features
}

// PrintExecutionMode says whether one calculator runs or several are
// compared.
func PrintExecutionMode(calculators []fibonacci.Calculator, out io.Writer) {
	switch len(calculators) {
	case 0:
		fmt.Fprintf(out, "Execution mode: no calculator selected.\n")
	case 1:
		fmt.Fprintf(out, "Execution mode: single run with %s%s%s (%s).\n",
			ui.ColorGreen(), calculators[0].Name(), ui.ColorReset(), calculators[0].Description())
	default:
		names := make([]string, len(calculators))
		for i, c := range calculators {
			names[i] = c.Name()
		}
		fmt.Fprintf(out, "Execution mode: parallel comparison of %s.\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
