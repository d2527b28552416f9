package fibonacci

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/fibengine/internal/progress"
)

// BatchOptions configures ComputeBatch.
type BatchOptions struct {
	// Policy is the overflow policy applied to every element.
	Policy Policy
	// Workers is the maximum number of goroutines. Values <= 1, or batches
	// smaller than ParallelBatchThreshold, run sequentially.
	Workers int
	// Chunk is the number of elements computed between cancellation checks.
	// Zero selects DefaultChunk(n).
	Chunk int
	// OnProgress, when set, receives the completed fraction after each chunk.
	OnProgress progress.ProgressCallback
}

// DefaultChunk returns DefaultBatchChunk, shrunk for large n so that one
// chunk stays within ChunkIterations loop iterations. Never below 1.
func DefaultChunk(n uint32) int {
	if n == 0 {
		return DefaultBatchChunk
	}
	return max(1, min(DefaultBatchChunk, ChunkIterations/int(n)))
}

// ComputeBatch returns count independent computations of F(n) under the
// options' policy. The output is identical to Batch for PolicyWrap whatever
// the worker count: parallelism changes scheduling, never values or order.
//
// Parameters:
//   - ctx: Checked between chunks; cancellation aborts the batch.
//   - count: The number of elements to compute.
//   - n: The index computed by every element.
//   - opts: Policy, parallelism and progress settings.
//
// Returns:
//   - []uint32: Exactly count elements (nil when an error is returned).
//   - error: The context error, or an *OverflowError under PolicyChecked.
func ComputeBatch(ctx context.Context, count, n uint32, opts BatchOptions) ([]uint32, error) {
	tracker := progress.NewTracker(uint64(count), opts.OnProgress)
	results := make([]uint32, count)
	if count == 0 {
		tracker.Finish()
		return results, nil
	}

	chunk := opts.Chunk
	if chunk <= 0 {
		chunk = DefaultChunk(n)
	}

	fill := func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			v, err := Compute(n, opts.Policy)
			if err != nil {
				return err
			}
			results[i] = v
		}
		tracker.Add(uint64(hi - lo))
		return nil
	}

	total := int(count)
	if opts.Workers <= 1 || total < ParallelBatchThreshold {
		for lo := 0; lo < total; lo += chunk {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := fill(lo, min(lo+chunk, total)); err != nil {
				return nil, err
			}
		}
		tracker.Finish()
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for lo := 0; lo < total; lo += chunk {
		hi := min(lo+chunk, total)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fill(lo, hi)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	tracker.Finish()
	return results, nil
}
