// Package metrics samples Go runtime memory statistics around benchmarked
// calls.
package metrics

import (
	"runtime"
	"time"
)

// MemorySnapshot holds a point-in-time memory reading.
type MemorySnapshot struct {
	HeapAlloc  uint64 // bytes in use
	TotalAlloc uint64 // cumulative bytes allocated
	Mallocs    uint64 // cumulative heap objects allocated
	Sys        uint64 // bytes obtained from the OS
	NumGC      uint32
}

// AllocDelta is the allocation cost between two snapshots.
type AllocDelta struct {
	Bytes   uint64
	Objects uint64
	GCs     uint32
}

// MemoryCollector reads runtime memory statistics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Snapshot reads current memory statistics. It stops the world briefly.
func (mc *MemoryCollector) Snapshot() MemorySnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemorySnapshot{
		HeapAlloc:  m.HeapAlloc,
		TotalAlloc: m.TotalAlloc,
		Mallocs:    m.Mallocs,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
	}
}

// Delta returns the allocations made between before and after. Concurrent
// goroutines are counted too, so deltas are only precise when the measured
// call runs alone.
func Delta(before, after MemorySnapshot) AllocDelta {
	return AllocDelta{
		Bytes:   after.TotalAlloc - before.TotalAlloc,
		Objects: after.Mallocs - before.Mallocs,
		GCs:     after.NumGC - before.NumGC,
	}
}

// Measure runs fn and returns its wall time and allocation cost.
func (mc *MemoryCollector) Measure(fn func()) (time.Duration, AllocDelta) {
	before := mc.Snapshot()
	start := time.Now()
	fn()
	elapsed := time.Since(start)
	return elapsed, Delta(before, mc.Snapshot())
}
