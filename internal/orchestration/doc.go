// Package orchestration runs Fibonacci calculators side by side, either once
// for a comparison or under timing for a benchmark, and hands the collected
// results to a presenter. Presentation lives behind the ProgressReporter,
// ResultPresenter and BenchmarkPresenter interfaces so the CLI and the
// dashboard can share the same execution code.
package orchestration
