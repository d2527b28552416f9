package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibengine/internal/format"
	"github.com/agbru/fibengine/internal/orchestration"
)

// MetricsModel shows process memory and, once the benchmark is done, the
// best throughput.
type MetricsModel struct {
	heapAlloc    uint64
	sys          uint64
	numGC        uint32
	numGoroutine int

	fastest    string
	throughput float64 // batch elements per second
	width      int
	height     int
}

// NewMetricsModel creates an empty metrics panel.
func NewMetricsModel() MetricsModel {
	return MetricsModel{}
}

// SetSize updates dimensions.
func (m *MetricsModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// UpdateMemStats stores a runtime sample.
func (m *MetricsModel) UpdateMemStats(msg MemStatsMsg) {
	m.heapAlloc = msg.HeapAlloc
	m.sys = msg.Sys
	m.numGC = msg.NumGC
	m.numGoroutine = msg.NumGoroutine
}

// UpdateReport records the fastest batch of the report.
func (m *MetricsModel) UpdateReport(report orchestration.BenchmarkReport) {
	m.fastest, m.throughput = "", 0
	for _, r := range report.Rows {
		if r.Err != nil || r.Batch <= 0 {
			continue
		}
		if tp := float64(report.Spec.Count) / r.Batch.Seconds(); tp > m.throughput {
			m.fastest, m.throughput = r.Name, tp
		}
	}
}

// View renders the metrics panel.
func (m MetricsModel) View() string {
	lines := []string{
		metricLine("Heap:", format.FormatBytes(m.heapAlloc)+" / "+format.FormatBytes(m.sys)),
		metricLine("GC cycles:", fmt.Sprintf("%d", m.numGC)),
		metricLine("Goroutines:", fmt.Sprintf("%d", m.numGoroutine)),
	}
	if m.fastest != "" {
		lines = append(lines, metricLine("Throughput:", fmt.Sprintf("%s/s (%s)", formatRate(m.throughput), m.fastest)))
	}
	return panelStyle.
		Width(max(m.width-2, 0)).
		Height(max(m.height-2, 0)).
		Render(strings.Join(lines, "\n"))
}

func metricLine(label, value string) string {
	return " " + metricLabelStyle.Render(fmt.Sprintf("%-12s", label)) + metricValueStyle.Render(value)
}

// formatRate renders an element rate with a metric suffix.
func formatRate(r float64) string {
	switch {
	case r >= 1e9:
		return fmt.Sprintf("%.2fG", r/1e9)
	case r >= 1e6:
		return fmt.Sprintf("%.2fM", r/1e6)
	case r >= 1e3:
		return fmt.Sprintf("%.2fk", r/1e3)
	}
	return fmt.Sprintf("%.0f", r)
}

// padRight pads s with spaces to w display cells.
func padRight(s string, w int) string {
	if gap := w - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
