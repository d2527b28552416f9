// Command fibwasm is the WebAssembly guest exposing the Fibonacci engine to
// a host.
//
// Built for WASI as a reactor module:
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o fibwasm.wasm ./cmd/fibwasm
//
// it exports
//
//	fibonacci(n u32) u32
//	batch_fibonacci(count u32, n u32) u32   address of count little-endian u32 values
//	release_batch(addr u32) u32             1 when the buffer was freed, 0 otherwise
//
// The host must call _initialize once, read the batch buffer from linear
// memory and release it. Built with GOOS=js it instead registers
// fibonacci(n) and batchFibonacci(count, n) on the JavaScript global
// object, the latter returning a Uint32Array.
package main
