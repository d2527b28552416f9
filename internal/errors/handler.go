package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/agbru/fibengine/internal/fibonacci"
)

// ColorProvider supplies the ANSI sequences used when printing an error
// status. A nil ColorProvider prints plain text.
type ColorProvider interface {
	Red() string
	Yellow() string
	Reset() string
}

type plainColors struct{}

func (plainColors) Red() string    { return "" }
func (plainColors) Yellow() string { return "" }
func (plainColors) Reset() string  { return "" }

// ExitCodeFor maps an error to the process exit code without printing.
func ExitCodeFor(err error) int {
	var configErr ConfigError
	var validationErr ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, context.DeadlineExceeded):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	case errors.Is(err, fibonacci.ErrOverflow):
		return ExitErrorOverflow
	case errors.As(err, &configErr), errors.As(err, &validationErr):
		return ExitErrorConfig
	default:
		return ExitErrorGeneric
	}
}

// HandleCalculationError prints a status line describing err and returns
// the matching exit code.
//
// Parameters:
//   - err: The error to report (nil reports nothing and returns ExitSuccess).
//   - duration: Time spent before the failure; zero omits it.
//   - out: Destination of the status line.
//   - colors: Color sequences, or nil for plain text.
//
// Returns:
//   - int: The exit code from ExitCodeFor.
func HandleCalculationError(err error, duration time.Duration, out io.Writer, colors ColorProvider) int {
	if err == nil {
		return ExitSuccess
	}
	if colors == nil {
		colors = plainColors{}
	}
	after := ""
	if duration > 0 {
		after = fmt.Sprintf(" after %s", duration)
	}

	code := ExitCodeFor(err)
	switch code {
	case ExitErrorTimeout:
		limit := ""
		var timeoutErr TimeoutError
		if errors.As(err, &timeoutErr) {
			limit = fmt.Sprintf(" of %s", timeoutErr.Limit)
		}
		fmt.Fprintf(out, "%sStatus: Failure (Timeout). The execution limit%s was reached%s.%s\n", colors.Red(), limit, after, colors.Reset())
	case ExitErrorCanceled:
		fmt.Fprintf(out, "%sStatus: Canceled by user%s.%s\n", colors.Yellow(), after, colors.Reset())
	case ExitErrorOverflow:
		fmt.Fprintf(out, "%sStatus: Failure (Overflow). %v%s\n", colors.Red(), err, colors.Reset())
	case ExitErrorConfig:
		fmt.Fprintf(out, "%sStatus: Invalid input. %v%s\n", colors.Red(), err, colors.Reset())
	default:
		fmt.Fprintf(out, "%sStatus: Failure. Unexpected error%s: %v%s\n", colors.Red(), after, err, colors.Reset())
	}
	return code
}
