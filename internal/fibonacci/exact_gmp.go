//go:build gmp

package fibonacci

import (
	"math/big"

	"github.com/ncw/gmp"
)

// ExactBackend names the arbitrary-precision implementation behind Exact.
const ExactBackend = "gmp"

// Exact returns the exact value of F(n) with no width limit, accumulating
// with GMP and converting the result back to a math/big value.
func Exact(n uint64) *big.Int {
	a, b := gmp.NewInt(0), gmp.NewInt(1)
	for i := uint64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	result, _ := new(big.Int).SetString(a.String(), 10)
	return result
}
