// Package calibration measures how many workers make a parallel batch
// fastest on the current machine and persists the answer in a profile.
package calibration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"time"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/config"
	"github.com/agbru/fibengine/internal/fibonacci"
)

const (
	// MinCalibrationCount is the smallest batch timed; below it every worker
	// count runs sequentially and the measurement would be meaningless.
	MinCalibrationCount = 1 << 18
	// DefaultRepeats is the number of timings per candidate. The minimum is
	// kept.
	DefaultRepeats = 3
	// quickCount and quickIndex size the batch timed by AutoCalibrate. The
	// index is fixed so the cost does not grow with the requested N.
	quickCount = 1 << 16
	quickIndex = 256
	// quickBudget caps AutoCalibrate; the caller's deadline still applies.
	quickBudget = 2 * time.Second
)

// ErrInconsistentResults is returned when two worker counts produce
// different batches.
var ErrInconsistentResults = errors.New("calibration: batches differ between worker counts")

// Options describes one calibration run.
type Options struct {
	N       uint32
	Count   uint32
	Repeats int
	// Candidates are the worker counts to time. Empty selects
	// GenerateWorkerCounts(runtime.NumCPU()).
	Candidates []int
}

type calibrationResult struct {
	Workers  int
	Duration time.Duration
	Err      error
}

// Measure times ComputeBatch for every candidate and returns the results in
// candidate order together with the fastest worker count. Every candidate
// must produce the same batch.
func Measure(ctx context.Context, opts Options) ([]calibrationResult, int, error) {
	candidates := opts.Candidates
	if len(candidates) == 0 {
		candidates = GenerateWorkerCounts(runtime.NumCPU())
	}
	repeats := max(opts.Repeats, 1)

	results := make([]calibrationResult, 0, len(candidates))
	var reference []uint32
	best, bestDur := 0, time.Duration(0)
	for _, workers := range candidates {
		res := calibrationResult{Workers: workers}
		for range repeats {
			start := time.Now()
			values, err := fibonacci.ComputeBatch(ctx, opts.Count, opts.N, fibonacci.BatchOptions{Workers: workers})
			elapsed := time.Since(start)
			if err != nil {
				if ctx.Err() != nil {
					return results, best, context.Cause(ctx)
				}
				res.Err = err
				break
			}
			if reference == nil {
				reference = values
			} else if !slices.Equal(reference, values) {
				return results, best, fmt.Errorf("%w (workers=%d)", ErrInconsistentResults, workers)
			}
			if res.Duration == 0 || elapsed < res.Duration {
				res.Duration = elapsed
			}
		}
		results = append(results, res)
		if res.Err == nil && (best == 0 || res.Duration < bestDur) {
			best, bestDur = workers, res.Duration
		}
	}
	if best == 0 {
		return results, 0, errors.New("calibration: no candidate completed")
	}
	return results, best, nil
}

// RunCalibration performs a full calibration for cfg, prints the summary,
// saves the profile and returns an exit code.
func RunCalibration(ctx context.Context, cfg config.AppConfig, out io.Writer, colors apperrors.ColorProvider) int {
	opts := Options{
		N:       cfg.Index(),
		Count:   uint32(max(cfg.Count, MinCalibrationCount)),
		Repeats: DefaultRepeats,
	}
	fmt.Fprintf(out, "--- Calibration: %d x F(%d), %d runs per worker count ---\n", opts.Count, opts.N, opts.Repeats)

	start := time.Now()
	results, best, err := Measure(ctx, opts)
	elapsed := time.Since(start)
	if err != nil {
		return apperrors.HandleCalculationError(err, elapsed, out, colors)
	}
	printCalibrationResults(out, results, best)

	profile := NewProfile()
	profile.OptimalWorkers = best
	profile.CalibrationN = opts.N
	profile.CalibrationCount = opts.Count
	profile.CalibrationTime = elapsed.Round(time.Millisecond).String()
	path := profilePath(cfg)
	if err := profile.SaveProfile(path); err != nil {
		fmt.Fprintf(out, "%sWarning: could not save calibration profile: %v%s\n", colors.Yellow(), err, colors.Reset())
	} else {
		fmt.Fprintf(out, "Profile saved to %s.\n", path)
	}
	return apperrors.ExitSuccess
}

// AutoCalibrate runs a quick calibration when cfg leaves Workers at zero and
// the batch is large enough for parallelism to matter. ok is false when
// nothing was measured, including when ctx expires first.
func AutoCalibrate(ctx context.Context, cfg config.AppConfig, out io.Writer) (config.AppConfig, bool) {
	if cfg.Workers != 0 || cfg.Count < fibonacci.ParallelBatchThreshold {
		return cfg, false
	}
	ctx, cancel := context.WithTimeout(ctx, quickBudget)
	defer cancel()
	_, best, err := Measure(ctx, Options{
		N:          quickIndex,
		Count:      quickCount,
		Repeats:    1,
		Candidates: GenerateQuickWorkerCounts(runtime.NumCPU()),
	})
	if err != nil {
		return cfg, false
	}
	cfg.Workers = best
	if !cfg.Quiet {
		printCalibrationOutput(cfg, out)
	}
	return cfg, true
}

// LoadCachedCalibration applies the worker count of a valid, fresh profile
// when cfg leaves Workers at zero.
func LoadCachedCalibration(cfg config.AppConfig) (config.AppConfig, bool) {
	if cfg.Workers != 0 {
		return cfg, false
	}
	profile, loaded := LoadOrCreateProfile(profilePath(cfg))
	if !loaded || profile.OptimalWorkers <= 0 || profile.IsStale(MaxProfileAge) {
		return cfg, false
	}
	cfg.Workers = profile.OptimalWorkers
	return cfg, true
}

// MaxProfileAge is how long a stored profile is trusted.
const MaxProfileAge = 30 * 24 * time.Hour

func profilePath(cfg config.AppConfig) string {
	if cfg.CalibrationProfile != "" {
		return cfg.CalibrationProfile
	}
	return GetDefaultProfilePath()
}
