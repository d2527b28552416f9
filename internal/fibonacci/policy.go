package fibonacci

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"strings"
)

// Policy selects what happens when F(n) does not fit in a uint32.
type Policy int

const (
	// PolicyWrap reduces results modulo 2^32. This is the export behaviour.
	PolicyWrap Policy = iota
	// PolicySaturate clamps results to math.MaxUint32.
	PolicySaturate
	// PolicyChecked reports an *OverflowError instead of a value.
	PolicyChecked
)

// ErrOverflow is the sentinel wrapped by every OverflowError.
var ErrOverflow = errors.New("fibonacci: result exceeds uint32 range")

// OverflowError reports that F(N) cannot be represented as a uint32.
type OverflowError struct {
	// N is the index whose value overflowed.
	N uint32
}

// Error returns a message naming the offending index.
func (e *OverflowError) Error() string {
	return fmt.Sprintf("F(%d) exceeds uint32 range (largest exact index is %d)", e.N, MaxExactIndex)
}

// Unwrap returns ErrOverflow so callers can use errors.Is.
func (e *OverflowError) Unwrap() error { return ErrOverflow }

// String returns the policy name as accepted by ParsePolicy.
func (p Policy) String() string {
	switch p {
	case PolicyWrap:
		return "wrap"
	case PolicySaturate:
		return "saturate"
	case PolicyChecked:
		return "checked"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// PolicyNames lists the accepted policy names in declaration order.
func PolicyNames() []string {
	return []string{PolicyWrap.String(), PolicySaturate.String(), PolicyChecked.String()}
}

// ParsePolicy converts a case-insensitive name into a Policy. The empty
// string selects PolicyWrap.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "wrap":
		return PolicyWrap, nil
	case "saturate":
		return PolicySaturate, nil
	case "checked", "error":
		return PolicyChecked, nil
	}
	return PolicyWrap, fmt.Errorf("unknown overflow policy %q (accepted: %s)", s, strings.Join(PolicyNames(), ", "))
}

// Overflows reports whether the exact value of F(n) exceeds math.MaxUint32.
func Overflows(n uint32) bool {
	return n > MaxExactIndex
}

// Compute returns F(n) under the given policy.
//
// The accumulation is the same loop as Fibonacci; for PolicySaturate and
// PolicyChecked every addition is carry-checked, and since the sequence is
// monotonic the first carry decides the outcome.
//
// Parameters:
//   - n: The index in the Fibonacci sequence.
//   - p: The overflow policy.
//
// Returns:
//   - uint32: The value under the policy (0 when an error is returned).
//   - error: An *OverflowError under PolicyChecked when F(n) overflows.
func Compute(n uint32, p Policy) (uint32, error) {
	if p == PolicyWrap {
		return Fibonacci(n), nil
	}
	if n <= 1 {
		return n, nil
	}
	var a, b uint32 = 0, 1
	for i := uint32(1); i < n; i++ {
		sum, carry := bits.Add32(a, b, 0)
		if carry != 0 {
			if p == PolicySaturate {
				return math.MaxUint32, nil
			}
			return 0, &OverflowError{N: n}
		}
		a, b = b, sum
	}
	return b, nil
}
