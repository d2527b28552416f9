package fibonacci

import "math/big"

// uint32Mask is 2^32-1, used to reduce exact values to the export width.
var uint32Mask = new(big.Int).SetUint64(0xFFFFFFFF)

// Reduce returns x modulo 2^32. For any n, Reduce(Exact(n)) == Fibonacci(n).
func Reduce(x *big.Int) uint32 {
	return uint32(new(big.Int).And(x, uint32Mask).Uint64())
}
