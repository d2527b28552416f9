// Package export holds the host-facing side of the engine: buffers handed
// to a WebAssembly host by batch_fibonacci and kept alive until the host
// releases them.
package export

import (
	"sync"
	"unsafe"

	"github.com/agbru/fibengine/internal/fibonacci"
)

// Table tracks batch buffers owned by the host. A buffer is identified by
// the address of its first element, which is what crosses the export
// boundary; the table holds a reference so the garbage collector cannot
// reclaim memory the host is still reading.
type Table struct {
	mu      sync.Mutex
	buffers map[uintptr][]uint32
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{buffers: make(map[uintptr][]uint32)}
}

// Batch computes fibonacci.Batch(count, n) and retains the result.
//
// Returns:
//   - uintptr: The address of the first element, or 0 when count is 0.
//   - []uint32: The retained buffer (empty when count is 0).
func (t *Table) Batch(count, n uint32) (uintptr, []uint32) {
	buf := fibonacci.Batch(count, n)
	if len(buf) == 0 {
		return 0, buf
	}
	addr := uintptr(unsafe.Pointer(&buf[0]))

	t.mu.Lock()
	t.buffers[addr] = buf
	t.mu.Unlock()
	return addr, buf
}

// Release drops the buffer at addr. It reports false for unknown or
// already released addresses, including 0.
func (t *Table) Release(addr uintptr) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.buffers[addr]; !ok {
		return false
	}
	delete(t.buffers, addr)
	return true
}

// Len returns the number of buffers not yet released.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buffers)
}
