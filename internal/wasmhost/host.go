// Package wasmhost loads the fibwasm guest with wazero and calls its
// exports, playing the role a browser plays for the original module.
package wasmhost

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"

	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/progress"
)

// Export names of the guest ABI.
const (
	ExportFibonacci      = "fibonacci"
	ExportBatchFibonacci = "batch_fibonacci"
	ExportReleaseBatch   = "release_batch"
)

// MaxBatchCount bounds a single guest batch so that its byte length fits
// the 32-bit memory addressing of the guest.
const MaxBatchCount = 1 << 28

// Module is an instantiated guest. Calls are serialised: a Go guest is
// single-threaded and its exports are not reentrant.
type Module struct {
	mu      sync.Mutex
	runtime wazero.Runtime
	module  api.Module
	fib     api.Function
	batch   api.Function
	release api.Function
}

// Verify interface compliance.
var _ fibonacci.Calculator = (*Module)(nil)

// LoadFile reads a guest binary from disk and instantiates it.
func LoadFile(ctx context.Context, path string) (*Module, error) {
	wasm, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading wasm module: %w", err)
	}
	return Load(ctx, wasm)
}

// Load compiles and instantiates a guest, running its _initialize export.
// The returned Module must be closed.
func Load(ctx context.Context, wasm []byte) (*Module, error) {
	r := wazero.NewRuntime(ctx)
	wasi_snapshot_preview1.MustInstantiate(ctx, r)

	compiled, err := r.CompileModule(ctx, wasm)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("compiling wasm module: %w", err)
	}

	cfg := wazero.NewModuleConfig().
		WithName("fibwasm").
		WithStartFunctions("_initialize")
	mod, err := r.InstantiateModule(ctx, compiled, cfg)
	if err != nil {
		r.Close(ctx)
		return nil, fmt.Errorf("instantiating wasm module: %w", err)
	}

	m := &Module{
		runtime: r,
		module:  mod,
		fib:     mod.ExportedFunction(ExportFibonacci),
		batch:   mod.ExportedFunction(ExportBatchFibonacci),
		release: mod.ExportedFunction(ExportReleaseBatch),
	}
	for name, fn := range map[string]api.Function{
		ExportFibonacci:      m.fib,
		ExportBatchFibonacci: m.batch,
		ExportReleaseBatch:   m.release,
	} {
		if fn == nil {
			r.Close(ctx)
			return nil, fmt.Errorf("wasm module does not export %q", name)
		}
	}
	return m, nil
}

// Name returns fibonacci.AlgoWasm.
func (m *Module) Name() string { return fibonacci.AlgoWasm }

// Description summarises the implementation.
func (m *Module) Description() string {
	return "WebAssembly guest via wazero (wrap)"
}

// Fibonacci calls the guest's fibonacci export.
func (m *Module) Fibonacci(ctx context.Context, n uint32) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.fib.Call(ctx, api.EncodeU32(n))
	if err != nil {
		return 0, fmt.Errorf("calling %s: %w", ExportFibonacci, err)
	}
	return api.DecodeU32(res[0]), nil
}

// Batch calls batch_fibonacci, copies the buffer out of linear memory and
// releases it. onProgress receives 1.0 once the copy is complete; the guest
// call itself is not interruptible.
func (m *Module) Batch(ctx context.Context, count, n uint32, onProgress progress.ProgressCallback) ([]uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tracker := progress.NewTracker(uint64(count), onProgress)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count > MaxBatchCount {
		return nil, fmt.Errorf("batch of %d exceeds guest limit %d", count, MaxBatchCount)
	}

	res, err := m.batch.Call(ctx, api.EncodeU32(count), api.EncodeU32(n))
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", ExportBatchFibonacci, err)
	}
	addr := api.DecodeU32(res[0])
	if count == 0 {
		tracker.Finish()
		return []uint32{}, nil
	}

	raw, ok := m.module.Memory().Read(addr, count*4)
	if !ok {
		return nil, fmt.Errorf("batch buffer [%d, +%d) is outside guest memory", addr, count*4)
	}
	results := make([]uint32, count)
	for i := range results {
		results[i] = binary.LittleEndian.Uint32(raw[4*i:])
	}

	res, err = m.release.Call(ctx, api.EncodeU32(addr))
	if err != nil {
		return nil, fmt.Errorf("calling %s: %w", ExportReleaseBatch, err)
	}
	if api.DecodeU32(res[0]) != 1 {
		return nil, fmt.Errorf("guest did not recognise batch buffer at %d", addr)
	}

	tracker.Finish()
	return results, nil
}

// Close releases the runtime and the guest instance.
func (m *Module) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runtime.Close(ctx)
}
