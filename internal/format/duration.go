// Package format renders durations, byte counts and ratios for the CLI, the
// REPL and the dashboard.
package format

import (
	"fmt"
	"time"
)

// FormatExecutionDuration shows microseconds below a millisecond,
// milliseconds below a second and time.Duration's own format otherwise.
func FormatExecutionDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Round(time.Millisecond).String()
}

// FormatPerOp divides d by ops and formats the result with nanosecond
// precision. Zero ops yields "-".
func FormatPerOp(d time.Duration, ops uint64) string {
	if ops == 0 {
		return "-"
	}
	per := float64(d.Nanoseconds()) / float64(ops)
	switch {
	case per < 1e3:
		return fmt.Sprintf("%.1fns/op", per)
	case per < 1e6:
		return fmt.Sprintf("%.2fµs/op", per/1e3)
	}
	return fmt.Sprintf("%.2fms/op", per/1e6)
}
