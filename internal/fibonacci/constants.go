package fibonacci

// ─────────────────────────────────────────────────────────────────────────────
// Numeric Limits
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MaxExactIndex is the largest index whose Fibonacci number fits in a
	// uint32. F(47) = 2,971,215,073; F(48) = 4,807,526,976 exceeds 2^32-1 and
	// is the first value affected by the overflow policy.
	MaxExactIndex = 47

	// MaxRecursiveIndex bounds the naive recursive calculator. F(40) already
	// needs ~330 million calls; anything above is refused rather than left
	// to run for minutes.
	MaxRecursiveIndex = 40
)

// ─────────────────────────────────────────────────────────────────────────────
// Batch Tuning Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// DefaultBatchChunk is the number of batch elements computed between two
	// cancellation checks and progress reports.
	DefaultBatchChunk = 256

	// ChunkIterations bounds the loop iterations of a default-sized chunk so
	// that large indices still observe cancellation promptly.
	ChunkIterations = 1 << 24

	// ParallelBatchThreshold is the minimum batch size for which splitting
	// the work across goroutines pays for the scheduling overhead.
	ParallelBatchThreshold = 4096
)

// ─────────────────────────────────────────────────────────────────────────────
// Algorithm Names
// ─────────────────────────────────────────────────────────────────────────────

const (
	// AlgoIterative is the registry key of the two-accumulator loop.
	AlgoIterative = "iterative"
	// AlgoDoubling is the registry key of the O(log n) fast doubling variant.
	AlgoDoubling = "doubling"
	// AlgoRecursive is the registry key of the naive double recursion.
	AlgoRecursive = "recursive"
	// AlgoWasm is the registry key used for the WebAssembly guest.
	AlgoWasm = "wasm"
	// AlgoAll is not a registry key: it selects every registered calculator.
	AlgoAll = "all"
)
