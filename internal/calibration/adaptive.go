// This file implements the choice of worker counts to try based on the
// hardware.

package calibration

// ─────────────────────────────────────────────────────────────────────────────
// Adaptive Worker Candidates
// ─────────────────────────────────────────────────────────────────────────────

// GenerateWorkerCounts returns the worker counts a full calibration tries
// on a machine with numCPU logical processors. The list always starts with
// 1 (sequential) and is strictly increasing.
//
// Powers of two up to numCPU are tried, plus numCPU itself and, on larger
// machines, twice numCPU since batch chunks are short and goroutines block
// little.
func GenerateWorkerCounts(numCPU int) []int {
	counts := []int{1}
	if numCPU <= 1 {
		return counts
	}
	for w := 2; w < numCPU; w *= 2 {
		counts = append(counts, w)
	}
	counts = append(counts, numCPU)
	if numCPU >= 8 {
		counts = append(counts, 2*numCPU)
	}
	return counts
}

// GenerateQuickWorkerCounts returns a reduced candidate list for
// calibration at startup.
func GenerateQuickWorkerCounts(numCPU int) []int {
	switch {
	case numCPU <= 1:
		return []int{1}
	case numCPU <= 4:
		return []int{1, numCPU}
	default:
		return []int{1, numCPU / 2, numCPU}
	}
}
