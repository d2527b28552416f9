package tui

import (
	"fmt"
	"strings"

	"github.com/agbru/fibengine/internal/format"
	"github.com/agbru/fibengine/internal/orchestration"
)

// RowStatus is the state of one calculator in the table.
type RowStatus int

const (
	StatusRunning RowStatus = iota
	StatusComplete
	StatusError
)

// resultRow is one calculator line.
type resultRow struct {
	name     string
	progress float64
	status   RowStatus
	row      orchestration.BenchmarkRow
}

// ResultsModel is the calculator table. Rows keep the calculator order so
// progress indices map directly onto them.
type ResultsModel struct {
	rows     []resultRow
	baseline string
	count    uint32
	cursor   int
	status   string
	failed   bool
	width    int
	height   int
}

// NewResultsModel creates a table with one running row per name.
func NewResultsModel(names []string, count uint32) ResultsModel {
	rows := make([]resultRow, len(names))
	for i, name := range names {
		rows[i] = resultRow{name: name}
	}
	return ResultsModel{rows: rows, count: count}
}

// SetSize updates dimensions.
func (r *ResultsModel) SetSize(w, h int) {
	r.width = w
	r.height = h
}

// SetProgress updates the progress of row idx. Out-of-range indices are
// ignored.
func (r *ResultsModel) SetProgress(idx int, value float64) {
	if idx >= 0 && idx < len(r.rows) && r.rows[idx].status == StatusRunning {
		r.rows[idx].progress = value
	}
}

// SetReport fills the rows from the analysed benchmark.
func (r *ResultsModel) SetReport(report orchestration.BenchmarkReport) {
	r.baseline = report.Baseline
	for _, br := range report.Rows {
		for i := range r.rows {
			if r.rows[i].name != br.Name {
				continue
			}
			r.rows[i].row = br
			if br.Err != nil {
				r.rows[i].status = StatusError
			} else {
				r.rows[i].status = StatusComplete
				r.rows[i].progress = 1
			}
		}
	}
}

// SetStatus sets the line shown under the table.
func (r *ResultsModel) SetStatus(status string, failed bool) {
	r.status = status
	r.failed = failed
}

// MoveCursor moves the selection by delta, staying in range.
func (r *ResultsModel) MoveCursor(delta int) {
	if len(r.rows) == 0 {
		return
	}
	r.cursor = min(max(r.cursor+delta, 0), len(r.rows)-1)
}

// Selected returns the name of the selected calculator.
func (r ResultsModel) Selected() string {
	if len(r.rows) == 0 {
		return ""
	}
	return r.rows[r.cursor].name
}

// Reset puts every row back into the running state.
func (r *ResultsModel) Reset() {
	for i := range r.rows {
		r.rows[i] = resultRow{name: r.rows[i].name}
	}
	r.baseline, r.status, r.failed = "", "", false
}

const (
	colName    = 12
	colBar     = 16
	colTime    = 11
	colSpeedup = 10
)

// View renders the table, a detail line for the selected row and the
// status line.
func (r ResultsModel) View() string {
	var b strings.Builder
	header := padRight("Algorithm", colName) + padRight("Progress", colBar+8) +
		padRight("Single", colTime) + padRight("Batch", colTime) + padRight("Per elem", colTime) + "Speedup"
	b.WriteString(tableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i, row := range r.rows {
		name := padRight(row.name, colName)
		if i == r.cursor {
			name = selectedRowStyle.Render(padRight("▸ "+row.name, colName))
		} else {
			name = algoStyle.Render(name)
		}
		line := name + renderBar(row.progress, colBar) + fmt.Sprintf(" %5.1f%% ", row.progress*100)
		switch row.status {
		case StatusRunning:
			line += dimStyle.Render("running...")
		case StatusError:
			line += errorStyle.Render("failed")
		case StatusComplete:
			speedup := format.FormatSpeedup(row.row.BatchSpeedup, 1)
			if row.name == r.baseline {
				speedup = "baseline"
			}
			line += padRight(format.FormatExecutionDuration(row.row.Single), colTime) +
				padRight(format.FormatExecutionDuration(row.row.Batch), colTime) +
				padRight(format.FormatPerOp(row.row.Batch, uint64(r.count)), colTime) +
				successStyle.Render(padRight(speedup, colSpeedup))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(r.detail())
	if r.status != "" {
		b.WriteString("\n")
		if r.failed {
			b.WriteString(statusErrorStyle.Render(r.status))
		} else {
			b.WriteString(statusDoneStyle.Render(r.status))
		}
	}
	return panelStyle.
		Width(max(r.width-2, 0)).
		Height(max(r.height-2, 0)).
		Render(b.String())
}

func (r ResultsModel) detail() string {
	if len(r.rows) == 0 {
		return dimStyle.Render("No calculator selected.")
	}
	row := r.rows[r.cursor]
	switch row.status {
	case StatusError:
		return errorStyle.Render(fmt.Sprintf("%s: %v", row.name, row.row.Err))
	case StatusComplete:
		return fmt.Sprintf("%s: value %s, batch allocated %s in %d objects",
			algoStyle.Render(row.name),
			metricValueStyle.Render(format.FormatThousands(uint64(row.row.Value))),
			format.FormatBytes(row.row.BatchAlloc.Bytes), row.row.BatchAlloc.Objects)
	}
	return dimStyle.Render(row.name + ": waiting for results")
}
