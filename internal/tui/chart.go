package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/agbru/fibengine/internal/format"
)

// sparklineCapacity is the number of samples kept before the panel width
// is known.
const sparklineCapacity = 60

// ChartModel shows overall progress with ETA and sparklines of system CPU
// and memory usage.
type ChartModel struct {
	averageProgress float64
	eta             time.Duration
	elapsed         time.Duration
	done            bool
	cpuHistory      *RingBuffer
	memHistory      *RingBuffer
	width           int
	height          int
}

// NewChartModel creates an empty chart.
func NewChartModel() ChartModel {
	return ChartModel{
		cpuHistory: NewRingBuffer(sparklineCapacity),
		memHistory: NewRingBuffer(sparklineCapacity),
	}
}

// SetSize updates dimensions and resizes the histories to the sparkline
// width.
func (c *ChartModel) SetSize(w, h int) {
	c.width = w
	c.height = h
	if sw := c.sparklineWidth(); sw > 0 {
		c.cpuHistory.Resize(sw)
		c.memHistory.Resize(sw)
	}
}

func (c ChartModel) sparklineWidth() int {
	// border (2) + padding (2) + "CPU 100.0% " label (11)
	return c.width - 15
}

// AddDataPoint records the aggregated progress.
func (c *ChartModel) AddDataPoint(average float64, eta time.Duration) {
	c.averageProgress = average
	c.eta = eta
}

// UpdateSysStats pushes a system sample.
func (c *ChartModel) UpdateSysStats(cpuPercent, memPercent float64) {
	c.cpuHistory.Push(cpuPercent)
	c.memHistory.Push(memPercent)
}

// SetDone freezes the chart with the total run time.
func (c *ChartModel) SetDone(elapsed time.Duration) {
	c.done = true
	c.elapsed = elapsed
	c.averageProgress = 1
	c.eta = 0
}

// Reset clears progress and histories.
func (c *ChartModel) Reset() {
	c.averageProgress, c.eta, c.elapsed, c.done = 0, 0, 0, false
	c.cpuHistory.Reset()
	c.memHistory.Reset()
}

// View renders the chart panel.
func (c ChartModel) View() string {
	barWidth := max(c.width-20, 10)
	status := "ETA " + format.FormatExecutionDuration(c.eta)
	if c.done {
		status = "done in " + format.FormatExecutionDuration(c.elapsed)
	} else if c.eta <= 0 {
		status = "ETA -"
	}
	lines := []string{
		titleStyle.Render("Progress"),
		fmt.Sprintf(" %s %5.1f%%", renderBar(c.averageProgress, barWidth), c.averageProgress*100),
		" " + dimStyle.Render(status),
		"",
		fmt.Sprintf(" %s %s", metricLabelStyle.Render(fmt.Sprintf("CPU %5.1f%%", c.cpuHistory.Last())),
			cpuSparklineStyle.Render(RenderSparkline(c.cpuHistory.Slice()))),
		fmt.Sprintf(" %s %s", metricLabelStyle.Render(fmt.Sprintf("MEM %5.1f%%", c.memHistory.Last())),
			memSparklineStyle.Render(RenderSparkline(c.memHistory.Slice()))),
	}
	return panelStyle.
		Width(max(c.width-2, 0)).
		Height(max(c.height-2, 0)).
		Render(strings.Join(lines, "\n"))
}

// renderBar draws a bar of width cells filled to p (clamped to [0, 1]).
func renderBar(p float64, width int) string {
	p = min(max(p, 0), 1)
	filled := int(p * float64(width))
	return barFilledStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", width-filled))
}
