//go:build wasip1

package main

import (
	"github.com/agbru/fibengine/internal/export"
	"github.com/agbru/fibengine/internal/fibonacci"
)

// buffers keeps batch results alive until the host releases them. Linear
// memory is below 4 GiB, so addresses fit the u32 ABI.
var buffers = export.NewTable()

//go:wasmexport fibonacci
func exportFibonacci(n uint32) uint32 {
	return fibonacci.Fibonacci(n)
}

//go:wasmexport batch_fibonacci
func exportBatchFibonacci(count, n uint32) uint32 {
	addr, _ := buffers.Batch(count, n)
	return uint32(addr)
}

//go:wasmexport release_batch
func exportReleaseBatch(addr uint32) uint32 {
	if buffers.Release(uintptr(addr)) {
		return 1
	}
	return 0
}

func main() {}
