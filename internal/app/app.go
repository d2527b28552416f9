package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/fibengine/internal/calibration"
	"github.com/agbru/fibengine/internal/cli"
	"github.com/agbru/fibengine/internal/config"
	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/logging"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/tui"
	"github.com/agbru/fibengine/internal/ui"
	"github.com/agbru/fibengine/internal/wasmhost"
)

// RegistryFactory builds the native calculators for a policy and a batch
// worker count.
type RegistryFactory func(policy fibonacci.Policy, workers int) *fibonacci.Registry

// Application represents the fibengine application instance.
type Application struct {
	Config    config.AppConfig
	Factory   RegistryFactory
	ErrWriter io.Writer
	Logger    logging.Logger
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithFactory sets a custom RegistryFactory for the application.
func WithFactory(f RegistryFactory) AppOption {
	return func(a *Application) { a.Factory = f }
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(l logging.Logger) AppOption {
	return func(a *Application) { a.Logger = l }
}

// New creates a new Application instance by parsing command-line arguments.
// args[0] is the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Factory == nil {
		app.Factory = fibonacci.NewDefaultRegistry
	}

	programName := "fibengine"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	availableAlgos := app.Factory(fibonacci.PolicyWrap, 1).List()
	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, availableAlgos)
	if err != nil {
		return nil, err
	}

	if cfgWithProfile, loaded := calibration.LoadCachedCalibration(cfg); loaded {
		cfg = cfgWithProfile
	}

	app.Config = cfg
	if app.Logger == nil {
		app.Logger = logging.New(errWriter, logging.Options{
			Level:     cfg.LogLevel,
			Format:    cfg.LogFormat,
			Component: "fibengine",
		})
	}
	return app, nil
}

// runCompletion prints the completion script for the requested shell.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory(fibonacci.PolicyWrap, 1).List()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	ui.InitTheme(a.Config.NoColor)

	switch {
	case a.Config.Completion != "":
		return a.runCompletion(out)
	case a.Config.Calibrate:
		return a.runCalibration(ctx, out)
	}

	if a.Config.Serve || a.Config.Interactive {
		a.Config = config.ApplyAdaptiveWorkers(a.Config)
	} else {
		// Auto-calibration counts against --timeout like the run itself.
		var cancel context.CancelFunc
		ctx, cancel = a.withTimeout(ctx, a.timedOperation())
		defer cancel()
		a.Config = a.runAutoCalibrationIfEnabled(ctx, out)
	}

	registry, closeRegistry, err := a.buildRegistry(ctx, a.Config.OverflowPolicy())
	if err != nil {
		fmt.Fprintf(out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		return apperrors.ExitErrorConfig
	}
	defer closeRegistry()

	switch {
	case a.Config.Serve:
		return a.runServe(ctx)
	case a.Config.Interactive:
		return a.runREPL(ctx, registry, out)
	case a.Config.TUI:
		return a.runTUI(ctx, registry)
	case a.Config.Bench:
		return a.runBench(ctx, registry, out)
	}
	return a.runCalculate(ctx, registry, out)
}

// withTimeout bounds ctx by --timeout. The deadline's cause is a
// TimeoutError naming operation.
func (a *Application) withTimeout(ctx context.Context, operation string) (context.Context, context.CancelFunc) {
	limit := a.Config.Timeout
	return context.WithTimeoutCause(ctx, limit, apperrors.TimeoutError{Operation: operation, Limit: limit})
}

// timedOperation names the mode bounded by --timeout.
func (a *Application) timedOperation() string {
	switch {
	case a.Config.TUI:
		return "tui"
	case a.Config.Bench:
		return "bench"
	case a.Config.Batch:
		return "batch"
	}
	return "calculate"
}

// runCalibration runs the full calibration mode.
func (a *Application) runCalibration(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := a.withTimeout(ctx, "calibrate")
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	return calibration.RunCalibration(ctx, a.Config, out, cli.CLIColorProvider{})
}

// runAutoCalibrationIfEnabled measures the worker count when no profile or
// flag provided one, falling back to the hardware estimate. ctx carries the
// run deadline.
func (a *Application) runAutoCalibrationIfEnabled(ctx context.Context, out io.Writer) config.AppConfig {
	if updated, ok := calibration.AutoCalibrate(ctx, a.Config, out); ok {
		a.Logger.Debug("auto-calibrated batch workers", logging.Int("workers", updated.Workers))
		return updated
	}
	return config.ApplyAdaptiveWorkers(a.Config)
}

// buildRegistry creates the native calculators and, when a guest module is
// configured, loads it as the "wasm" calculator. The returned func releases
// the guest.
func (a *Application) buildRegistry(ctx context.Context, policy fibonacci.Policy) (*fibonacci.Registry, func(), error) {
	registry := a.Factory(policy, a.Config.Workers)
	if a.Config.WasmPath == "" {
		return registry, func() {}, nil
	}
	if policy != fibonacci.PolicyWrap {
		// The guest only implements modular arithmetic.
		a.Logger.Info("wasm calculator skipped: guest only supports the wrap policy",
			logging.String("policy", policy.String()))
		if a.Config.Algo == fibonacci.AlgoWasm {
			return nil, nil, apperrors.NewConfigError("algorithm %q only supports the wrap policy", fibonacci.AlgoWasm)
		}
		return registry, func() {}, nil
	}
	mod, err := wasmhost.LoadFile(ctx, a.Config.WasmPath)
	if err != nil {
		return nil, nil, apperrors.WrapError(err, "wasm guest %s", a.Config.WasmPath)
	}
	a.Logger.Debug("wasm guest loaded", logging.String("path", a.Config.WasmPath))
	registry.Register(mod)
	return registry, func() {
		if err := mod.Close(context.WithoutCancel(ctx)); err != nil {
			a.Logger.Error("closing wasm guest", err)
		}
	}, nil
}

// runTUI launches the interactive benchmark dashboard. ctx carries the
// --timeout deadline set by Run.
func (a *Application) runTUI(ctx context.Context, registry *fibonacci.Registry) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculatorsToRun := orchestration.GetCalculatorsToRun(a.Config.Algo, registry)
	return tui.Run(ctx, calculatorsToRun, a.Config, Version)
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
