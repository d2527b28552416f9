package fibonacci

import (
	"math"
	"testing"
)

// FuzzRecurrence verifies the recurrence and the fast doubling variant for
// arbitrary indices. Large inputs are folded to keep iterations quick.
func FuzzRecurrence(f *testing.F) {
	for _, n := range []uint32{2, 3, 10, 46, 47, 48, 49, 93, 1000, 65536} {
		f.Add(n)
	}

	f.Fuzz(func(t *testing.T, n uint32) {
		n = n%100000 + 2

		fn, fn1, fn2 := Fibonacci(n), Fibonacci(n-1), Fibonacci(n-2)
		if fn != fn1+fn2 {
			t.Errorf("F(%d)=%d but F(%d)+F(%d)=%d", n, fn, n-1, n-2, fn1+fn2)
		}
		if d := FastDoubling(n); d != fn {
			t.Errorf("FastDoubling(%d) = %d, Fibonacci = %d", n, d, fn)
		}
	})
}

// FuzzPolicies checks that every policy is consistent with the wrapped
// value and the overflow boundary.
func FuzzPolicies(f *testing.F) {
	for _, n := range []uint32{0, 1, 46, 47, 48, 100, 5000} {
		f.Add(n)
	}

	f.Fuzz(func(t *testing.T, n uint32) {
		n %= 50000

		wrapped, err := Compute(n, PolicyWrap)
		if err != nil || wrapped != Fibonacci(n) {
			t.Fatalf("wrap policy F(%d) = %d, %v", n, wrapped, err)
		}

		sat, _ := Compute(n, PolicySaturate)
		chk, chkErr := Compute(n, PolicyChecked)

		if Overflows(n) {
			if sat != math.MaxUint32 {
				t.Errorf("saturate F(%d) = %d, want MaxUint32", n, sat)
			}
			if chkErr == nil {
				t.Errorf("checked F(%d) returned %d without error", n, chk)
			}
			return
		}
		if sat != wrapped || chk != wrapped || chkErr != nil {
			t.Errorf("F(%d): wrap=%d saturate=%d checked=%d err=%v", n, wrapped, sat, chk, chkErr)
		}
	})
}
