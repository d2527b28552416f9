//go:build !gmp

package fibonacci

import "math/big"

// ExactBackend names the arbitrary-precision implementation behind Exact.
const ExactBackend = "math/big"

// Exact returns the exact value of F(n) with no width limit. It is the
// widening oracle used to display true values and to verify the wrapped
// results; its cost is O(n) big additions, so callers bound n.
func Exact(n uint64) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for i := uint64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}
