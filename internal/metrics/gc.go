package metrics

import (
	"fmt"
	"math"
	"runtime"
	"runtime/debug"
	"strings"
)

// GCMode controls the garbage collector while a benchmark is timed.
type GCMode string

const (
	// GCModeAuto pauses the collector for batches of at least
	// GCAutoThreshold elements.
	GCModeAuto GCMode = "auto"
	// GCModePause always pauses the collector.
	GCModePause GCMode = "pause"
	// GCModeNormal leaves the collector alone.
	GCModeNormal GCMode = "normal"
)

// GCAutoThreshold is the smallest batch for which GCModeAuto pauses the
// collector. Below it a batch allocates too little for a cycle to land
// inside the timed region.
const GCAutoThreshold uint64 = 1 << 16

// GCModeNames lists the accepted GC modes.
func GCModeNames() []string {
	return []string{string(GCModeAuto), string(GCModePause), string(GCModeNormal)}
}

// ParseGCMode parses a GC mode name. The empty string is GCModeAuto.
func ParseGCMode(s string) (GCMode, error) {
	switch m := GCMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return GCModeAuto, nil
	case GCModeAuto, GCModePause, GCModeNormal:
		return m, nil
	}
	return "", fmt.Errorf("unknown gc mode %q (accepted: %s)", s, strings.Join(GCModeNames(), ", "))
}

// GCController pauses the garbage collector around a timed region so that
// a collection triggered by an earlier allocation is not billed to the
// measured call. A soft memory limit stays in place as an OOM safety net.
type GCController struct {
	mode              GCMode
	active            bool
	originalGCPercent int
	startStats        runtime.MemStats
	endStats          runtime.MemStats
}

// GCStats holds GC statistics between Begin and End.
type GCStats struct {
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	PauseTotalNs uint64
}

// NewGCController creates a controller for mode and a batch of count
// elements. An unknown mode behaves like GCModeNormal.
func NewGCController(mode GCMode, count uint64) *GCController {
	gc := &GCController{mode: mode}
	switch mode {
	case GCModePause:
		gc.active = true
	case GCModeAuto:
		gc.active = count >= GCAutoThreshold
	}
	return gc
}

// Active reports whether Begin will pause the collector.
func (gc *GCController) Active() bool { return gc.active }

// Begin pauses the collector if the controller is active.
func (gc *GCController) Begin() {
	if !gc.active {
		return
	}
	runtime.GC()
	runtime.ReadMemStats(&gc.startStats)
	gc.originalGCPercent = debug.SetGCPercent(-1)
	if gc.startStats.Sys > 0 {
		debug.SetMemoryLimit(int64(gc.startStats.Sys) * 3)
	}
}

// End restores the collector settings and runs a collection.
func (gc *GCController) End() {
	if !gc.active {
		return
	}
	runtime.ReadMemStats(&gc.endStats)
	debug.SetGCPercent(gc.originalGCPercent)
	debug.SetMemoryLimit(math.MaxInt64)
	runtime.GC()
}

// Stats returns the statistics delta between Begin and End. It is zero
// when the controller was inactive.
func (gc *GCController) Stats() GCStats {
	if !gc.active {
		return GCStats{}
	}
	return GCStats{
		HeapAlloc:    gc.endStats.HeapAlloc,
		TotalAlloc:   gc.endStats.TotalAlloc - gc.startStats.TotalAlloc,
		NumGC:        gc.endStats.NumGC - gc.startStats.NumGC,
		PauseTotalNs: gc.endStats.PauseTotalNs - gc.startStats.PauseTotalNs,
	}
}
