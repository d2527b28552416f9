// Package ui holds the color themes shared by the CLI output, the REPL and
// the dashboard. ANSI escape codes serve line-oriented output; the lipgloss
// palette serves the dashboard.
package ui
