// Package sysmon samples system-wide CPU and memory usage and describes the
// host for benchmark banners.
package sysmon

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
	MemUsed    uint64
	MemTotal   uint64
}

// Sample collects a single system-wide CPU and memory snapshot.
// CPU uses interval=0 (delta since last call). Fields stay zero on error.
func Sample(ctx context.Context) Stats {
	var s Stats
	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		s.CPUPercent = pcts[0]
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		s.MemPercent = vm.UsedPercent
		s.MemUsed = vm.Used
		s.MemTotal = vm.Total
	}
	return s
}

// HostInfo describes the machine a benchmark runs on.
type HostInfo struct {
	OS       string
	Platform string
	CPUModel string
	Cores    int
}

// Describe returns the host description, falling back to runtime values
// for anything gopsutil cannot read.
func Describe(ctx context.Context) HostInfo {
	info := HostInfo{OS: runtime.GOOS, Cores: runtime.NumCPU()}
	if h, err := host.InfoWithContext(ctx); err == nil && h != nil {
		info.Platform = h.Platform + " " + h.PlatformVersion
	}
	if cpus, err := cpu.InfoWithContext(ctx); err == nil && len(cpus) > 0 {
		info.CPUModel = cpus[0].ModelName
	}
	if info.CPUModel == "" {
		info.CPUModel = runtime.GOARCH
	}
	return info
}
