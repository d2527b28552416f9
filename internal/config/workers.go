package config

import (
	"runtime"

	"github.com/agbru/fibengine/internal/fibonacci"
)

// Worker resolution chain (highest priority first):
//   1. --workers
//   2. FIBENGINE_WORKERS
//   3. workers in the YAML file
//   4. Hardware estimation (this file)

// ApplyAdaptiveWorkers fills in Workers when it was left at zero. Small
// batches never benefit from parallelism, so the estimate only matters once
// Count reaches fibonacci.ParallelBatchThreshold.
func ApplyAdaptiveWorkers(cfg AppConfig) AppConfig {
	if cfg.Workers == 0 {
		cfg.Workers = EstimateOptimalWorkers(runtime.NumCPU(), cfg.Count)
	}
	return cfg
}

// EstimateOptimalWorkers provides a heuristic worker count for a batch of
// count elements on numCPU cores without running benchmarks.
func EstimateOptimalWorkers(numCPU int, count uint64) int {
	switch {
	case numCPU <= 1, count < fibonacci.ParallelBatchThreshold:
		return 1
	case numCPU <= 4:
		return numCPU
	case count < 16*fibonacci.ParallelBatchThreshold:
		// Chunks run out before more than a handful of goroutines get work.
		return 4
	default:
		return numCPU
	}
}
