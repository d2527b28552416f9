// Package config parses the command line, the FIBENGINE_* environment and an
// optional YAML file into an AppConfig.
package config

import (
	"flag"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"time"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/metrics"
)

// EnvPrefix prefixes every environment variable read by the configuration.
const EnvPrefix = "FIBENGINE_"

// Defaults.
const (
	DefaultN             = 30
	DefaultCount         = 100
	DefaultTimeout       = 5 * time.Minute
	DefaultAddr          = ":8080"
	DefaultParallelism   = 1
	DefaultMaxBatchCount = 1 << 20
)

// AppConfig aggregates the application's configuration.
type AppConfig struct {
	// N is the Fibonacci index. Stored as uint64 so out-of-range input can
	// be reported instead of silently truncated.
	N uint64
	// Count is the batch size used by --batch, the benchmark and the TUI.
	Count uint64
	// Policy is the overflow policy name: wrap, saturate or checked.
	Policy string
	// Algo is a calculator name or "all".
	Algo string
	// WasmPath is the path to the WebAssembly guest built from cmd/fibwasm.
	// When set the guest is registered as the "wasm" calculator.
	WasmPath string
	// Workers bounds the goroutines used by a single batch. Zero selects an
	// estimate based on the CPU count.
	Workers int
	// Parallelism is the number of calculators the benchmark runs at once.
	Parallelism int
	Timeout     time.Duration
	// GCMode controls the garbage collector while the benchmark is timed:
	// auto, pause or normal.
	GCMode string

	Batch       bool
	Bench       bool
	Serve       bool
	TUI         bool
	Interactive bool
	Calibrate   bool

	// CalibrationProfile is where --calibrate stores the measured worker
	// count and where later runs read it back. Empty selects
	// calibration.GetDefaultProfilePath.
	CalibrationProfile string

	// Exact also prints the exact (arbitrary precision) value of F(N).
	Exact      bool
	Quiet      bool
	Verbose    bool
	NoColor    bool
	OutputFile string

	// HTTP host.
	Addr           string
	AllowedOrigins []string
	MaxBatchCount  uint64

	LogLevel  string
	LogFormat string

	// ConfigFile is the YAML file the configuration was loaded from, if any.
	ConfigFile string
	// Completion names a shell; when set the completion script is printed
	// instead of running anything.
	Completion string
}

// Index returns N as a uint32. Only valid after Validate.
func (c AppConfig) Index() uint32 { return uint32(c.N) }

// BatchCount returns Count as a uint32. Only valid after Validate.
func (c AppConfig) BatchCount() uint32 { return uint32(c.Count) }

// OverflowPolicy returns the parsed Policy, defaulting to wrap.
func (c AppConfig) OverflowPolicy() fibonacci.Policy {
	p, err := fibonacci.ParsePolicy(c.Policy)
	if err != nil {
		return fibonacci.PolicyWrap
	}
	return p
}

// ParseConfig parses args (without the program name) into an AppConfig.
//
// Priority: command-line flags > FIBENGINE_* environment > YAML file given by
// --config or FIBENGINE_CONFIG > defaults.
//
// Parameters:
//   - programName: Used in usage output.
//   - args: The command-line arguments.
//   - errWriter: Receives usage and parse errors.
//   - availableAlgos: Calculator names accepted by --algo besides "all".
//
// Returns:
//   - AppConfig: The validated configuration.
//   - error: flag.ErrHelp for -h, or a ConfigError.
func ParseConfig(programName string, args []string, errWriter io.Writer, availableAlgos []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errWriter)

	cfg := AppConfig{}
	var origins string
	fs.Uint64Var(&cfg.N, "n", DefaultN, "Fibonacci index to compute (0 to 4294967295).")
	fs.Uint64Var(&cfg.Count, "count", DefaultCount, "Number of elements in a batch.")
	fs.StringVar(&cfg.Policy, "policy", fibonacci.PolicyWrap.String(), "Overflow policy: "+strings.Join(fibonacci.PolicyNames(), ", ")+".")
	fs.StringVar(&cfg.Algo, "algo", fibonacci.AlgoAll, "Algorithm: 'all' or one of ["+strings.Join(availableAlgos, ", ")+", wasm].")
	fs.StringVar(&cfg.WasmPath, "wasm", "", "Path to the WebAssembly guest module (registers the 'wasm' algorithm).")
	fs.IntVar(&cfg.Workers, "workers", 0, "Goroutines per batch (0 = estimate from CPU count, 1 = sequential).")
	fs.IntVar(&cfg.Parallelism, "parallelism", DefaultParallelism, "Calculators benchmarked concurrently.")
	fs.DurationVar(&cfg.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.StringVar(&cfg.GCMode, "gc-mode", string(metrics.GCModeAuto), "Garbage collector during benchmarks: "+strings.Join(metrics.GCModeNames(), ", ")+".")
	fs.BoolVar(&cfg.Batch, "batch", false, "Compute a batch of --count elements instead of a single value.")
	fs.BoolVar(&cfg.Bench, "bench", false, "Benchmark single and batch calls for every selected algorithm.")
	fs.BoolVar(&cfg.Serve, "serve", false, "Run the HTTP host.")
	fs.BoolVar(&cfg.TUI, "tui", false, "Run the benchmark in the interactive dashboard.")
	fs.BoolVar(&cfg.Interactive, "interactive", false, "Start the interactive REPL.")
	fs.BoolVar(&cfg.Interactive, "i", false, "Shorthand for --interactive.")
	fs.BoolVar(&cfg.Calibrate, "calibrate", false, "Time batches at several worker counts and report the fastest.")
	fs.StringVar(&cfg.CalibrationProfile, "calibration-profile", "", "Calibration profile file (default ~/.fibengine_calibration.json).")
	fs.BoolVar(&cfg.Exact, "exact", false, "Also print the exact value of F(n).")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "Print only results.")
	fs.BoolVar(&cfg.Quiet, "q", false, "Shorthand for --quiet.")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Print additional details.")
	fs.BoolVar(&cfg.Verbose, "v", false, "Shorthand for --verbose.")
	fs.BoolVar(&cfg.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&cfg.OutputFile, "output", "", "Write the result to this file.")
	fs.StringVar(&cfg.OutputFile, "o", "", "Shorthand for --output.")
	fs.StringVar(&cfg.Addr, "addr", DefaultAddr, "Listen address of the HTTP host.")
	fs.StringVar(&origins, "cors-origins", "", "Comma-separated origins allowed by CORS (empty = any).")
	fs.Uint64Var(&cfg.MaxBatchCount, "max-batch", DefaultMaxBatchCount, "Largest batch accepted by the HTTP host.")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error.")
	fs.StringVar(&cfg.LogFormat, "log-format", "json", "Log format: json, console or text.")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file.")
	fs.StringVar(&cfg.Completion, "completion", "", "Print a completion script for bash, zsh or fish.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, reportError(errWriter, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " ")))
	}
	cfg.AllowedOrigins = splitList(origins)

	if cfg.ConfigFile == "" && !isFlagSet(fs, "config") {
		cfg.ConfigFile = getEnvString("CONFIG", "")
	}
	if cfg.ConfigFile != "" {
		fc, err := LoadFile(cfg.ConfigFile)
		if err != nil {
			return AppConfig{}, reportError(errWriter, err)
		}
		fc.apply(&cfg, fs)
	}
	applyEnvOverrides(&cfg, fs)
	cfg.Algo = strings.ToLower(cfg.Algo)

	if err := cfg.Validate(availableAlgos); err != nil {
		return AppConfig{}, reportError(errWriter, err)
	}
	return cfg, nil
}

// reportError prints err the way the flag package prints its own errors.
func reportError(w io.Writer, err error) error {
	fmt.Fprintln(w, "Error:", err)
	return err
}

// Validate checks ranges and mutually exclusive modes.
func (c AppConfig) Validate(availableAlgos []string) error {
	if c.N > math.MaxUint32 {
		return apperrors.NewConfigError("n must be at most %d, got %d", uint64(math.MaxUint32), c.N)
	}
	if c.Count > math.MaxUint32 {
		return apperrors.NewConfigError("count must be at most %d, got %d", uint64(math.MaxUint32), c.Count)
	}
	if _, err := fibonacci.ParsePolicy(c.Policy); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := metrics.ParseGCMode(c.GCMode); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout must be positive, got %s", c.Timeout)
	}
	if c.Workers < 0 {
		return apperrors.NewConfigError("workers must not be negative, got %d", c.Workers)
	}
	if c.Parallelism < 1 {
		return apperrors.NewConfigError("parallelism must be at least 1, got %d", c.Parallelism)
	}
	switch algo := strings.ToLower(c.Algo); {
	case algo == fibonacci.AlgoAll:
	case algo == fibonacci.AlgoWasm:
		if c.WasmPath == "" {
			return apperrors.NewConfigError("algorithm %q requires --wasm", c.Algo)
		}
	case !slices.Contains(availableAlgos, algo):
		return apperrors.NewConfigError("unknown algorithm %q (available: all, %s)", c.Algo, strings.Join(availableAlgos, ", "))
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.LogLevel)) {
		return apperrors.NewConfigError("unknown log level %q", c.LogLevel)
	}
	if f := strings.ToLower(c.LogFormat); f != "json" && f != "console" && f != "text" {
		return apperrors.NewConfigError("unknown log format %q (json, console or text)", c.LogFormat)
	}
	modes := 0
	for _, on := range []bool{c.Bench, c.Serve, c.TUI, c.Interactive, c.Calibrate} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return apperrors.NewConfigError("--bench, --serve, --tui, --interactive and --calibrate are mutually exclusive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
