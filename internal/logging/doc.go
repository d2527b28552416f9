// Package logging provides the structured logging interface used by the
// HTTP host, the benchmark harness and the application wiring. The default
// backend is zerolog; a standard library adapter exists for embedding.
package logging
