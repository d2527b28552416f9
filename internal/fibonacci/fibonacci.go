package fibonacci

// Fibonacci returns F(n) using the standard recurrence F(0)=0, F(1)=1,
// F(k)=F(k-1)+F(k-2).
//
// Two running values are advanced n-1 times, giving O(n) time and O(1)
// space. Sums exceeding the uint32 range wrap modulo 2^32 with no error,
// which is the behaviour of the WebAssembly export.
//
// Parameters:
//   - n: The index in the Fibonacci sequence.
//
// Returns:
//   - uint32: F(n) mod 2^32.
func Fibonacci(n uint32) uint32 {
	if n <= 1 {
		return n
	}
	var a, b uint32 = 0, 1
	for i := uint32(1); i < n; i++ {
		a, b = b, a+b
	}
	return b
}

// Batch returns count copies of Fibonacci(n), each computed independently
// and stored in insertion order. A zero count yields an empty, non-nil slice.
//
// Parameters:
//   - count: The number of computations to perform.
//   - n: The index computed by every element.
//
// Returns:
//   - []uint32: A slice of exactly count elements.
func Batch(count, n uint32) []uint32 {
	results := make([]uint32, 0, count)
	for i := uint32(0); i < count; i++ {
		results = append(results, Fibonacci(n))
	}
	return results
}

// Recursive computes F(n) by naive double recursion. Its cost grows as
// O(phi^n); it exists for comparison with Fibonacci and is not exported to
// hosts. Wraparound matches Fibonacci.
func Recursive(n uint32) uint32 {
	if n <= 1 {
		return n
	}
	return Recursive(n-1) + Recursive(n-2)
}
