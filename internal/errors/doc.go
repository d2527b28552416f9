// Package apperrors defines structured application error types, allowing
// for a clear distinction between error classes (configuration, validation,
// calculation, overflow) and mapping each class to a process exit code.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All wrapping error types implement Unwrap() to support errors.Is() and errors.As().
package apperrors
