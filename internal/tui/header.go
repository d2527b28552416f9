package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibengine/internal/format"
)

// HeaderModel renders the top bar: title, version, workload and elapsed
// time.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	workload  string
	width     int
}

// NewHeaderModel creates a header for a benchmark of count x F(n).
func NewHeaderModel(version string, n, count uint32) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		workload:  fmt.Sprintf("F(%d) x %s", n, format.FormatThousands(uint64(count))),
	}
}

// SetDone freezes the elapsed timer.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

// Reset restarts the elapsed timer.
func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// Elapsed returns the running or frozen elapsed time.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "fibengine bench"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := dimStyle.Render(" | ")
	row := titleStyle.Render(titleText) + pipe +
		dimStyle.Render(h.workload) + pipe +
		elapsedStyle.Render("Elapsed: "+format.FormatExecutionDuration(h.Elapsed()))

	if gap := h.width - 2 - lipgloss.Width(row); gap > 0 {
		row += strings.Repeat(" ", gap)
	}
	return headerStyle.Width(h.width).Render(row)
}
