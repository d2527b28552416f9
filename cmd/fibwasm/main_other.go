//go:build !wasip1 && !(js && wasm)

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "fibwasm must be built with GOOS=wasip1 (-buildmode=c-shared) or GOOS=js GOARCH=wasm")
	os.Exit(1)
}
