//go:build js && wasm

package main

import (
	"encoding/binary"
	"syscall/js"

	"github.com/agbru/fibengine/internal/fibonacci"
)

// u32Arg converts argument i to a uint32 the way JavaScript's `>>> 0` does.
func u32Arg(args []js.Value, i int) (uint32, bool) {
	if i >= len(args) || args[i].Type() != js.TypeNumber {
		return 0, false
	}
	return uint32(args[i].Int()), true
}

func fibonacciFunc(_ js.Value, args []js.Value) any {
	n, ok := u32Arg(args, 0)
	if !ok {
		return js.Undefined()
	}
	return fibonacci.Fibonacci(n)
}

// batchFibonacciFunc returns a Uint32Array owned by the JavaScript side, so
// no release call is needed in the browser.
func batchFibonacciFunc(_ js.Value, args []js.Value) any {
	count, ok := u32Arg(args, 0)
	if !ok {
		return js.Undefined()
	}
	n, ok := u32Arg(args, 1)
	if !ok {
		return js.Undefined()
	}

	results := fibonacci.Batch(count, n)
	raw := make([]byte, 4*len(results))
	for i, v := range results {
		binary.LittleEndian.PutUint32(raw[4*i:], v)
	}
	bytes := js.Global().Get("Uint8Array").New(len(raw))
	js.CopyBytesToJS(bytes, raw)
	return js.Global().Get("Uint32Array").New(bytes.Get("buffer"))
}

func main() {
	js.Global().Set("fibonacci", js.FuncOf(fibonacciFunc))
	js.Global().Set("batchFibonacci", js.FuncOf(batchFibonacciFunc))
	select {}
}
