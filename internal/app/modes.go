package app

import (
	"context"
	"errors"
	"io"
	"os/signal"
	"syscall"

	"github.com/agbru/fibengine/internal/cli"
	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/logging"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/server"
	"github.com/agbru/fibengine/internal/tui"
)

// runBench times single and batch calls for every selected calculator and
// prints the speedup table. ctx carries the --timeout deadline set by Run.
func (a *Application) runBench(ctx context.Context, registry *fibonacci.Registry, out io.Writer) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	calculatorsToRun := orchestration.GetCalculatorsToRun(a.Config.Algo, registry)
	spec := tui.BenchmarkSpecFor(a.Config)

	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressReporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	} else {
		cli.PrintExecutionConfig(ctx, a.Config, out)
		cli.PrintExecutionMode(calculatorsToRun, out)
	}

	results := orchestration.RunBenchmark(ctx, calculatorsToRun, spec, progressReporter, progressOut)
	presenter := cli.CLIResultPresenter{}
	return orchestration.AnalyzeBenchmark(results, spec, presenter, presenter, out)
}

// runServe runs the HTTP host until SIGINT or SIGTERM.
func (a *Application) runServe(ctx context.Context) int {
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	security := server.DefaultSecurityConfig()
	if len(a.Config.AllowedOrigins) > 0 {
		security.AllowedOrigins = a.Config.AllowedOrigins
	}
	security.MaxBatchCount = uint32(min(a.Config.MaxBatchCount, uint64(^uint32(0))))

	srv := server.New(server.Config{
		Addr:           a.Config.Addr,
		Security:       security,
		DefaultPolicy:  a.Config.OverflowPolicy(),
		Workers:        a.Config.Workers,
		RequestTimeout: a.Config.Timeout,
	}, a.Logger)

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error("server stopped", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive session. The REPL rebuilds the calculators
// itself when the user switches policy.
func (a *Application) runREPL(_ context.Context, registry *fibonacci.Registry, out io.Writer) int {
	factory := func(p fibonacci.Policy) *fibonacci.Registry {
		r := a.Factory(p, a.Config.Workers)
		if wasm, err := registry.Get(fibonacci.AlgoWasm); err == nil && p == fibonacci.PolicyWrap {
			r.Register(wasm)
		}
		return r
	}
	repl := cli.NewREPL(factory, cli.REPLConfig{
		DefaultAlgo: a.Config.Algo,
		Policy:      a.Config.OverflowPolicy(),
		Timeout:     a.Config.Timeout,
	})
	repl.SetOutput(out)
	a.Logger.Debug("interactive session started", logging.String("algo", a.Config.Algo))
	repl.Start()
	return apperrors.ExitSuccess
}
