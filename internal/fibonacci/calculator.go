//go:generate mockgen -source=calculator.go -destination=mocks/mock_calculator.go -package=mocks

package fibonacci

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/agbru/fibengine/internal/progress"
)

// ErrIndexTooLarge is returned by calculators that bound their input.
var ErrIndexTooLarge = errors.New("index too large for this algorithm")

// Calculator is a named implementation of the two engine operations. The
// benchmark harness, the REPL and the HTTP host all work through it, so a
// native loop and a WebAssembly guest can be compared side by side.
type Calculator interface {
	// Name returns the registry key of the implementation.
	Name() string
	// Description returns a human-readable summary for listings.
	Description() string
	// Fibonacci returns F(n).
	Fibonacci(ctx context.Context, n uint32) (uint32, error)
	// Batch returns count independent computations of F(n).
	Batch(ctx context.Context, count, n uint32, onProgress progress.ProgressCallback) ([]uint32, error)
}

// IterativeCalculator wraps Compute and ComputeBatch.
type IterativeCalculator struct {
	// Policy is the overflow policy.
	Policy Policy
	// Workers bounds batch parallelism; see BatchOptions.
	Workers int
}

// Name returns AlgoIterative.
func (c *IterativeCalculator) Name() string { return AlgoIterative }

// Description summarises the algorithm.
func (c *IterativeCalculator) Description() string {
	return fmt.Sprintf("Iterative accumulation (O(n), %s)", c.Policy)
}

// Fibonacci returns F(n) under the calculator's policy.
func (c *IterativeCalculator) Fibonacci(_ context.Context, n uint32) (uint32, error) {
	return Compute(n, c.Policy)
}

// Batch delegates to ComputeBatch.
func (c *IterativeCalculator) Batch(ctx context.Context, count, n uint32, onProgress progress.ProgressCallback) ([]uint32, error) {
	return ComputeBatch(ctx, count, n, BatchOptions{
		Policy:     c.Policy,
		Workers:    c.Workers,
		OnProgress: onProgress,
	})
}

// DoublingCalculator computes with FastDoubling.
type DoublingCalculator struct {
	Policy Policy
}

// Name returns AlgoDoubling.
func (c *DoublingCalculator) Name() string { return AlgoDoubling }

// Description summarises the algorithm.
func (c *DoublingCalculator) Description() string {
	return fmt.Sprintf("Fast doubling (O(log n), %s)", c.Policy)
}

// Fibonacci returns F(n) under the calculator's policy.
func (c *DoublingCalculator) Fibonacci(_ context.Context, n uint32) (uint32, error) {
	return applyPolicy(n, c.Policy, FastDoubling(n))
}

// Batch computes count elements sequentially.
func (c *DoublingCalculator) Batch(ctx context.Context, count, n uint32, onProgress progress.ProgressCallback) ([]uint32, error) {
	return sequentialBatch(ctx, count, onProgress, func() (uint32, error) {
		return c.Fibonacci(ctx, n)
	})
}

// RecursiveCalculator computes with Recursive and refuses indices above
// MaxRecursiveIndex.
type RecursiveCalculator struct{}

// Name returns AlgoRecursive.
func (c *RecursiveCalculator) Name() string { return AlgoRecursive }

// Description summarises the algorithm.
func (c *RecursiveCalculator) Description() string {
	return fmt.Sprintf("Naive double recursion (O(phi^n), n <= %d)", MaxRecursiveIndex)
}

// Fibonacci returns F(n), or ErrIndexTooLarge above MaxRecursiveIndex.
func (c *RecursiveCalculator) Fibonacci(_ context.Context, n uint32) (uint32, error) {
	if n > MaxRecursiveIndex {
		return 0, fmt.Errorf("recursive F(%d): %w (max %d)", n, ErrIndexTooLarge, MaxRecursiveIndex)
	}
	return Recursive(n), nil
}

// Batch computes count elements sequentially.
func (c *RecursiveCalculator) Batch(ctx context.Context, count, n uint32, onProgress progress.ProgressCallback) ([]uint32, error) {
	if n > MaxRecursiveIndex {
		return nil, fmt.Errorf("recursive F(%d): %w (max %d)", n, ErrIndexTooLarge, MaxRecursiveIndex)
	}
	return sequentialBatch(ctx, count, onProgress, func() (uint32, error) {
		return Recursive(n), nil
	})
}

// applyPolicy converts an already wrapped value into the value required by
// the policy.
func applyPolicy(n uint32, p Policy, wrapped uint32) (uint32, error) {
	if p == PolicyWrap || !Overflows(n) {
		return wrapped, nil
	}
	if p == PolicySaturate {
		return math.MaxUint32, nil
	}
	return 0, &OverflowError{N: n}
}

// sequentialBatch calls next count times, checking ctx every
// DefaultBatchChunk elements.
func sequentialBatch(ctx context.Context, count uint32, onProgress progress.ProgressCallback, next func() (uint32, error)) ([]uint32, error) {
	tracker := progress.NewTracker(uint64(count), onProgress)
	results := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		if i%DefaultBatchChunk == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if i > 0 {
				tracker.Add(DefaultBatchChunk)
			}
		}
		v, err := next()
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
	tracker.Finish()
	return results, nil
}
