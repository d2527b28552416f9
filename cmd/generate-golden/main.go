// Command generate-golden writes the golden file used by the fibonacci
// package tests. Values come from a math/big oracle that shares no code
// with the package under test.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"math/big"
	"os"
	"path/filepath"
)

// goldenEntry is one record of the golden file.
type goldenEntry struct {
	N         uint32 `json:"n"`
	Exact     string `json:"exact"`
	Wrapped   uint32 `json:"wrapped"`
	Saturated uint32 `json:"saturated"`
	Overflows bool   `json:"overflows"`
}

// extraIndices are the indices beyond the dense 0..100 range: powers of two
// around byte and word boundaries and a few large values.
var extraIndices = []uint32{127, 128, 255, 256, 1000, 4096, 10000}

func main() {
	out := flag.String("o", filepath.Join("internal", "fibonacci", "testdata", "fibonacci_golden.json"), "output file")
	flag.Parse()

	data, err := json.MarshalIndent(buildEntries(goldenIndices()), "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "encoding golden data: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "creating output directory: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, append(data, '\n'), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "writing %s: %v\n", *out, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %d entries to %s\n", len(goldenIndices()), *out)
}

func goldenIndices() []uint32 {
	indices := make([]uint32, 0, 101+len(extraIndices))
	for n := uint32(0); n <= 100; n++ {
		indices = append(indices, n)
	}
	return append(indices, extraIndices...)
}

func buildEntries(indices []uint32) []goldenEntry {
	mod := new(big.Int).Lsh(big.NewInt(1), 32)
	maxU32 := new(big.Int).SetUint64(math.MaxUint32)

	entries := make([]goldenEntry, 0, len(indices))
	for _, n := range indices {
		exact := fibBig(uint64(n))
		e := goldenEntry{
			N:         n,
			Exact:     exact.String(),
			Wrapped:   uint32(new(big.Int).Mod(exact, mod).Uint64()),
			Overflows: exact.Cmp(maxU32) > 0,
		}
		if e.Overflows {
			e.Saturated = math.MaxUint32
		} else {
			e.Saturated = uint32(exact.Uint64())
		}
		entries = append(entries, e)
	}
	return entries
}

// fibBig is the oracle: the plain recurrence on big.Int.
func fibBig(n uint64) *big.Int {
	a, b := big.NewInt(0), big.NewInt(1)
	for i := uint64(0); i < n; i++ {
		a.Add(a, b)
		a, b = b, a
	}
	return a
}
