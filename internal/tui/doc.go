// Package tui runs the benchmark inside a bubbletea dashboard: one row per
// calculator with its progress and timings, process metrics, and sparklines
// of system CPU and memory usage.
//
// The orchestration layer talks to the dashboard through
// TUIProgressReporter and TUIResultPresenter, which forward everything as
// bubbletea messages through a shared programRef.
package tui
