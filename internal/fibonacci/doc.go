// Package fibonacci implements the Fibonacci engine: the iterative uint32
// computation exported to WebAssembly hosts, its batch form, the overflow
// policies (wrap, saturate, checked) and the calculators compared by the
// benchmark harness.
//
// The exported semantics are those of fixed-width unsigned arithmetic:
// F(n) is reduced modulo 2^32 without any error. Callers wanting a
// different behaviour pick a Policy explicitly.
package fibonacci
