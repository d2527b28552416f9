package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/format"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/ui"
)

// REPLConfig holds configuration for the REPL session.
type REPLConfig struct {
	// DefaultAlgo is the initial algorithm; "all" or empty selects the
	// first registered one.
	DefaultAlgo string
	// Policy is the initial overflow policy.
	Policy fibonacci.Policy
	// Timeout bounds each command.
	Timeout time.Duration
}

// RegistryFactory builds the calculators for an overflow policy. The REPL
// calls it again whenever the policy changes.
type RegistryFactory func(fibonacci.Policy) *fibonacci.Registry

// REPL is an interactive session.
type REPL struct {
	config      REPLConfig
	newRegistry RegistryFactory
	registry    *fibonacci.Registry
	currentAlgo string
	in          io.Reader
	out         io.Writer
}

// NewREPL creates a session reading stdin and writing stdout.
func NewREPL(newRegistry RegistryFactory, config REPLConfig) *REPL {
	r := &REPL{
		config:      config,
		newRegistry: newRegistry,
		registry:    newRegistry(config.Policy),
		currentAlgo: config.DefaultAlgo,
		in:          os.Stdin,
		out:         os.Stdout,
	}
	if _, err := r.registry.Get(r.currentAlgo); err != nil {
		if names := r.registry.List(); len(names) > 0 {
			r.currentAlgo = names[0]
		}
	}
	if r.config.Timeout <= 0 {
		r.config.Timeout = time.Minute
	}
	return r
}

// SetInput sets a custom input reader.
func (r *REPL) SetInput(in io.Reader) { r.in = in }

// SetOutput sets a custom output writer.
func (r *REPL) SetOutput(out io.Writer) { r.out = out }

// Start reads and executes commands until "exit" or EOF.
func (r *REPL) Start() {
	fmt.Fprintf(r.out, "\n%sfibengine interactive mode%s (32-bit Fibonacci, type %shelp%s)\n\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())

	reader := bufio.NewReader(r.in)
	for {
		fmt.Fprint(r.out, ui.ColorGreen()+"fib> "+ui.ColorReset())
		input, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintf(r.out, "%sRead error: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
			return
		}
		if line := strings.TrimSpace(input); line != "" {
			if !r.processCommand(line) {
				return
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out, "\nGoodbye!")
			return
		}
	}
}

func (r *REPL) printHelp() {
	fmt.Fprintf(r.out, "%sCommands:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, line := range [][2]string{
		{"<n> | calc <n>", "Compute F(n) with the current algorithm"},
		{"batch <count> <n>", "Compute count copies of F(n)"},
		{"exact <n>", "Show the exact value of F(n)"},
		{"compare <n>", "Run every algorithm on F(n)"},
		{"algo <name>", "Change algorithm (" + strings.Join(r.registry.List(), ", ") + ")"},
		{"policy <name>", "Change overflow policy (" + strings.Join(fibonacci.PolicyNames(), ", ") + ")"},
		{"list", "List algorithms"},
		{"status", "Show the current settings"},
		{"exit", "Leave interactive mode"},
	} {
		fmt.Fprintf(r.out, "  %s%-18s%s %s%s%s\n", ui.ColorYellow(), line[0], ui.ColorReset(), ui.ColorGrey(), line[1], ui.ColorReset())
	}
}

// processCommand executes one line. Returns false when the session ends.
func (r *REPL) processCommand(input string) bool {
	parts := strings.Fields(input)
	cmd, args := strings.ToLower(parts[0]), parts[1:]

	switch cmd {
	case "calc", "c":
		if n, ok := r.parseArgs(args, "calc <n>"); ok {
			r.calculate(n[0])
		}
	case "batch", "b":
		if v, ok := r.parseArgs(args, "batch <count> <n>", "count", "n"); ok {
			r.batch(v[0], v[1])
		}
	case "exact", "e":
		if n, ok := r.parseArgs(args, "exact <n>"); ok {
			fmt.Fprintf(r.out, "F(%d) = %s\n", n[0], FormatExact(fibonacci.Exact(uint64(n[0])), false))
		}
	case "compare", "cmp":
		if n, ok := r.parseArgs(args, "compare <n>"); ok {
			r.compare(n[0])
		}
	case "algo", "a":
		r.cmdAlgo(args)
	case "policy", "p":
		r.cmdPolicy(args)
	case "list", "ls":
		r.cmdList()
	case "status", "st":
		r.cmdStatus()
	case "help", "h", "?":
		r.printHelp()
	case "exit", "quit", "q":
		fmt.Fprintf(r.out, "%sGoodbye!%s\n", ui.ColorGreen(), ui.ColorReset())
		return false
	default:
		if n, err := parseIndex(cmd); err == nil {
			r.calculate(n)
			return true
		}
		fmt.Fprintf(r.out, "%sUnknown command: %s%s\n", ui.ColorRed(), cmd, ui.ColorReset())
		fmt.Fprintf(r.out, "Type %shelp%s to see available commands.\n", ui.ColorYellow(), ui.ColorReset())
	}
	return true
}

func parseIndex(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	return uint32(v), err
}

// parseArgs parses exactly len(names) uint32 arguments (one named "n" by
// default), printing usage on error.
func (r *REPL) parseArgs(args []string, usage string, names ...string) ([]uint32, bool) {
	if len(names) == 0 {
		names = []string{"n"}
	}
	if len(args) != len(names) {
		fmt.Fprintf(r.out, "%sUsage: %s%s\n", ui.ColorRed(), usage, ui.ColorReset())
		return nil, false
	}
	vals := make([]uint32, len(args))
	for i, a := range args {
		v, err := parseIndex(a)
		if err != nil {
			fmt.Fprintf(r.out, "%sInvalid %s: %s (expected 0..4294967295)%s\n", ui.ColorRed(), names[i], a, ui.ColorReset())
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func (r *REPL) current() (fibonacci.Calculator, bool) {
	calc, err := r.registry.Get(r.currentAlgo)
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return nil, false
	}
	return calc, true
}

func (r *REPL) calculate(n uint32) {
	calc, ok := r.current()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	start := time.Now()
	v, err := calc.Fibonacci(ctx, n)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "F(%d) = %s%d%s  (%s, %s)\n", n, ui.ColorGreen(), v, ui.ColorReset(),
		calc.Name(), format.FormatExecutionDuration(elapsed))
	if fibonacci.Overflows(n) && r.config.Policy == fibonacci.PolicyWrap {
		fmt.Fprintf(r.out, "  %swrapped modulo 2^32%s\n", ui.ColorYellow(), ui.ColorReset())
	}
}

func (r *REPL) batch(count, n uint32) {
	calc, ok := r.current()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	start := time.Now()
	values, err := calc.Batch(ctx, count, n, nil)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Fprintf(r.out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	fmt.Fprintf(r.out, "%s  (%s, %s, %s)\n", FormatBatch(values, false), calc.Name(),
		format.FormatExecutionDuration(elapsed), format.FormatPerOp(elapsed, uint64(count)))
}

func (r *REPL) compare(n uint32) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.Timeout)
	defer cancel()

	results := orchestration.ExecuteCalculations(ctx, r.registry.GetAll(), orchestration.Request{N: n},
		orchestration.NullProgressReporter{}, io.Discard)

	fmt.Fprintf(r.out, "\n%sComparison for F(%d):%s\n", ui.ColorBold(), n, ui.ColorReset())
	var reference *orchestration.CalculationResult
	for i, res := range results {
		if res.Err != nil {
			fmt.Fprintf(r.out, "  %s%-10s%s %sError - %v%s\n", ui.ColorYellow(), res.Name, ui.ColorReset(), ui.ColorRed(), res.Err, ui.ColorReset())
			continue
		}
		status := ui.ColorGreen() + "✓" + ui.ColorReset()
		if reference == nil {
			reference = &results[i]
		} else if res.Value != reference.Value {
			status = ui.ColorRed() + "✗ INCONSISTENT" + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "  %s%-10s%s %12d %s%10s%s %s\n", ui.ColorYellow(), res.Name, ui.ColorReset(),
			res.Value, ui.ColorCyan(), format.FormatExecutionDuration(res.Duration), ui.ColorReset(), status)
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdAlgo(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: algo <name>%s\n", ui.ColorRed(), ui.ColorReset())
		return
	}
	name := strings.ToLower(args[0])
	if _, err := r.registry.Get(name); err != nil {
		fmt.Fprintf(r.out, "%sUnknown algorithm: %s%s (available: %s)\n", ui.ColorRed(), name, ui.ColorReset(), strings.Join(r.registry.List(), ", "))
		return
	}
	r.currentAlgo = name
	fmt.Fprintf(r.out, "Algorithm changed to: %s%s%s\n", ui.ColorGreen(), name, ui.ColorReset())
}

func (r *REPL) cmdPolicy(args []string) {
	if len(args) != 1 {
		fmt.Fprintf(r.out, "%sUsage: policy <%s>%s\n", ui.ColorRed(), strings.Join(fibonacci.PolicyNames(), "|"), ui.ColorReset())
		return
	}
	p, err := fibonacci.ParsePolicy(args[0])
	if err != nil {
		fmt.Fprintf(r.out, "%s%v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return
	}
	r.config.Policy = p
	r.registry = r.newRegistry(p)
	fmt.Fprintf(r.out, "Overflow policy changed to: %s%s%s\n", ui.ColorGreen(), p, ui.ColorReset())
}

func (r *REPL) cmdList() {
	fmt.Fprintf(r.out, "\n%sAvailable algorithms:%s\n", ui.ColorBold(), ui.ColorReset())
	for _, calc := range r.registry.GetAll() {
		marker := "  "
		if calc.Name() == r.currentAlgo {
			marker = ui.ColorGreen() + "► " + ui.ColorReset()
		}
		fmt.Fprintf(r.out, "%s%s%-10s%s - %s\n", marker, ui.ColorYellow(), calc.Name(), ui.ColorReset(), calc.Description())
	}
	fmt.Fprintln(r.out)
}

func (r *REPL) cmdStatus() {
	fmt.Fprintf(r.out, "\n%sCurrent configuration:%s\n", ui.ColorBold(), ui.ColorReset())
	fmt.Fprintf(r.out, "  Algorithm: %s%s%s\n", ui.ColorCyan(), r.currentAlgo, ui.ColorReset())
	fmt.Fprintf(r.out, "  Policy:    %s%s%s\n", ui.ColorCyan(), r.config.Policy, ui.ColorReset())
	fmt.Fprintf(r.out, "  Timeout:   %s%s%s\n", ui.ColorCyan(), r.config.Timeout, ui.ColorReset())
	fmt.Fprintln(r.out)
}
