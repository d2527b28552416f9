package fibonacci

import "math/bits"

// FastDoubling computes F(n) mod 2^32 in O(log n) steps using the fast
// doubling identities:
//
//	F(2k)   = F(k) * (2*F(k+1) - F(k))
//	F(2k+1) = F(k+1)² + F(k)²
//
// Both identities are polynomial, so evaluating them in uint32 arithmetic
// yields exactly the wrapped value produced by Fibonacci for every n.
func FastDoubling(n uint32) uint32 {
	var fk, fk1 uint32 = 0, 1 // F(k), F(k+1)

	for i := bits.Len32(n) - 1; i >= 0; i-- {
		f2k := fk * (2*fk1 - fk)
		f2k1 := fk1*fk1 + fk*fk
		fk, fk1 = f2k, f2k1

		// If bit is set: shift to F(2k+1), F(2k+2)
		if (n>>uint(i))&1 == 1 {
			fk, fk1 = fk1, fk+fk1
		}
	}

	return fk
}
