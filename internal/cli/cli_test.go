package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/config"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/metrics"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/progress"
	"github.com/agbru/fibengine/internal/ui"
)

func TestMain(m *testing.M) {
	ui.SetCurrentTheme(ui.NoColorTheme)
	os.Exit(m.Run())
}

type mockSpinner struct {
	mu      sync.Mutex
	started bool
	stopped bool
	suffix  string
}

func (m *mockSpinner) Start() { m.mu.Lock(); m.started = true; m.mu.Unlock() }
func (m *mockSpinner) Stop()  { m.mu.Lock(); m.stopped = true; m.mu.Unlock() }
func (m *mockSpinner) UpdateSuffix(s string) {
	m.mu.Lock()
	m.suffix = s
	m.mu.Unlock()
}

// TestDisplayProgress replaces the package-level spinner constructor and
// must not run in parallel with other spinner users.
func TestDisplayProgress(t *testing.T) {
	original := newSpinner
	defer func() { newSpinner = original }()
	mock := &mockSpinner{}
	newSpinner = func(...spinner.Option) Spinner { return mock }

	var wg sync.WaitGroup
	wg.Add(1)
	ch := make(chan progress.ProgressUpdate)
	var out bytes.Buffer
	go func() {
		ch <- progress.ProgressUpdate{CalculatorIndex: 0, Value: 0.5}
		ch <- progress.ProgressUpdate{CalculatorIndex: 1, Value: 0.5}
		close(ch)
	}()
	DisplayProgress(&wg, ch, 2, &out)
	wg.Wait()

	if !mock.started || !mock.stopped {
		t.Errorf("spinner started=%v stopped=%v", mock.started, mock.stopped)
	}
	if !strings.Contains(mock.suffix, "50.0%") || !strings.Contains(mock.suffix, "2 algorithms") {
		t.Errorf("last suffix = %q", mock.suffix)
	}
	if !strings.Contains(out.String(), "100.0%") {
		t.Errorf("final line = %q", out.String())
	}
}

func TestDisplayProgressZeroCalculators(t *testing.T) {
	t.Parallel()
	var wg sync.WaitGroup
	wg.Add(1)
	ch := make(chan progress.ProgressUpdate, 1)
	ch <- progress.ProgressUpdate{Value: 1}
	close(ch)
	DisplayProgress(&wg, ch, 0, io.Discard)
	wg.Wait()
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		p    float64
		want string
	}{
		{0, "░░░░"},
		{0.5, "██░░"},
		{1, "████"},
		{-1, "░░░░"},
		{2, "████"},
	}
	for _, tt := range tests {
		if got := progressBar(tt.p, 4); got != tt.want {
			t.Errorf("progressBar(%v) = %q, want %q", tt.p, got, tt.want)
		}
	}
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	rs := &realSpinner{spinner.New(spinner.CharSets[11], time.Millisecond, spinner.WithWriter(io.Discard))}
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
}

func TestDisplayResult(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		result  orchestration.CalculationResult
		opts    orchestration.PresentationOptions
		want    []string
		notWant []string
	}{
		{
			name:    "exact value",
			result:  orchestration.CalculationResult{Name: "iterative", Value: 55},
			opts:    orchestration.PresentationOptions{Request: orchestration.Request{N: 10}},
			want:    []string{"F(10) = 55", "iterative"},
			notWant: []string{"Wrapped", "Batch"},
		},
		{
			name:   "wrapped",
			result: orchestration.CalculationResult{Name: "iterative", Value: 512559680},
			opts:   orchestration.PresentationOptions{Request: orchestration.Request{N: 48}},
			want:   []string{"F(48) = 512,559,680", "Wrapped: value is F(48) mod 2^32"},
		},
		{
			name:   "saturated with exact",
			result: orchestration.CalculationResult{Name: "doubling", Value: 4294967295},
			opts: orchestration.PresentationOptions{
				Request: orchestration.Request{N: 48},
				Policy:  fibonacci.PolicySaturate,
				Exact:   true,
			},
			want: []string{"Saturated", "Exact F(48) = 4807526976"},
		},
		{
			name: "batch preview",
			result: orchestration.CalculationResult{
				Name: "iterative", Value: 1, Values: []uint32{1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
			},
			opts: orchestration.PresentationOptions{Request: orchestration.Request{N: 2, Count: 10, Batch: true}},
			want: []string{"Batch: 10 elements of F(2)", "[1 1 1 1 1 1 1 1 ... (2 more)]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			DisplayResult(tt.result, tt.opts, &buf)
			for _, s := range tt.want {
				if !strings.Contains(buf.String(), s) {
					t.Errorf("output missing %q:\n%s", s, buf.String())
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(buf.String(), s) {
					t.Errorf("output unexpectedly contains %q:\n%s", s, buf.String())
				}
			}
		})
	}
}

func TestFormatBatch(t *testing.T) {
	t.Parallel()
	if got := FormatBatch(nil, false); got != "[]" {
		t.Errorf("empty = %q", got)
	}
	if got := FormatBatch([]uint32{5, 5, 5}, false); got != "[5 5 5]" {
		t.Errorf("short = %q", got)
	}
	long := make([]uint32, BatchPreview+3)
	if got := FormatBatch(long, true); strings.Contains(got, "more") {
		t.Errorf("verbose batch truncated: %q", got)
	}
}

func TestFormatExact(t *testing.T) {
	t.Parallel()
	small := big.NewInt(12345)
	if got := FormatExact(small, false); got != "12345" {
		t.Errorf("small = %q", got)
	}
	huge := fibonacci.Exact(1000)
	got := FormatExact(huge, false)
	if !strings.Contains(got, "209 digits, truncated") || !strings.HasPrefix(got, "4346655768693745643568852...") {
		t.Errorf("huge = %q", got)
	}
	if FormatExact(huge, true) != huge.String() {
		t.Error("verbose exact value truncated")
	}
}

func TestQuietResult(t *testing.T) {
	t.Parallel()
	res := orchestration.CalculationResult{Value: 8, Values: []uint32{8, 8}}
	var buf bytes.Buffer
	DisplayQuietResult(&buf, res, false)
	DisplayQuietResult(&buf, res, true)
	if buf.String() != "8\n8 8\n" {
		t.Errorf("quiet output = %q", buf.String())
	}
}

func TestWriteResultToFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "dir", "result.txt")
	res := orchestration.CalculationResult{Name: "wasm", Value: 55, Values: []uint32{55, 55}}
	opts := orchestration.PresentationOptions{Request: orchestration.Request{N: 10, Count: 2, Batch: true}, Exact: true}
	if err := WriteResultToFile(path, res, opts); err != nil {
		t.Fatalf("WriteResultToFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"# Algorithm: wasm", "# Policy: wrap", "# Count: 2", "F(10) = 55\n55\n55\n", "exact = 55"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("file missing %q:\n%s", want, data)
		}
	}
}

func TestPresentComparisonTable(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	CLIResultPresenter{}.PresentComparisonTable([]orchestration.CalculationResult{
		{Name: "iterative", Duration: 42 * time.Microsecond},
		{Name: "recursive", Err: fibonacci.ErrIndexTooLarge},
	}, &buf)
	out := buf.String()
	for _, want := range []string{"Comparison Summary", "iterative   42µs", "✅ Success", "❌ Failure (index too large"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestPresentBenchmark(t *testing.T) {
	t.Parallel()
	report := orchestration.BenchmarkReport{
		Spec:     orchestration.BenchmarkSpec{N: 40, Count: 1000},
		Baseline: "iterative",
		Rows: []orchestration.BenchmarkRow{
			{
				BenchmarkResult: orchestration.BenchmarkResult{
					Name: "wasm", Value: 102334155, Single: time.Microsecond, Batch: time.Millisecond,
					BatchAlloc: metrics.AllocDelta{Bytes: 4096},
				},
				SingleSpeedup: 0.5, BatchSpeedup: 2,
			},
			{
				BenchmarkResult: orchestration.BenchmarkResult{Name: "iterative", Single: 500 * time.Nanosecond, Batch: 2 * time.Millisecond},
				SingleSpeedup:   1, BatchSpeedup: 1,
			},
			{BenchmarkResult: orchestration.BenchmarkResult{Name: "recursive", Err: errors.New("too slow")}},
		},
	}
	var buf bytes.Buffer
	CLIResultPresenter{}.PresentBenchmark(report, &buf)
	out := buf.String()
	for _, want := range []string{
		"Benchmark: F(40), batch of 1,000",
		"Per element", "1.00µs/op", "4.0 KiB", "baseline", "failed: too slow",
		"wasm is 2.00x the speed of iterative on batches (0.50x on single calls)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	code := CLIResultPresenter{}.HandleError(&fibonacci.OverflowError{N: 50}, time.Second, &buf)
	if code != apperrors.ExitErrorOverflow {
		t.Errorf("code = %d", code)
	}
	if !strings.Contains(buf.String(), "F(50)") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintExecutionConfig(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cfg := config.AppConfig{N: 48, Count: 1000, Batch: true, Policy: "saturate", Timeout: time.Minute, Workers: 4}
	PrintExecutionConfig(context.Background(), cfg, &buf)
	out := buf.String()
	for _, want := range []string{"1,000 x F(48)", "saturate", "exceeds 32 bits", "logical processors", "Batch workers: 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintExecutionMode(t *testing.T) {
	t.Parallel()
	registry := fibonacci.NewDefaultRegistry(fibonacci.PolicyWrap, 1)

	var single bytes.Buffer
	PrintExecutionMode(orchestration.GetCalculatorsToRun("iterative", registry), &single)
	if !strings.Contains(single.String(), "single run with iterative") {
		t.Errorf("single = %q", single.String())
	}

	var all bytes.Buffer
	PrintExecutionMode(registry.GetAll(), &all)
	if !strings.Contains(all.String(), "doubling, iterative, recursive") {
		t.Errorf("all = %q", all.String())
	}
}

func TestCLIColorProvider(t *testing.T) {
	t.Parallel()
	var c apperrors.ColorProvider = CLIColorProvider{}
	if c.Red() != "" || c.Reset() != "" {
		t.Error("no-color theme should yield empty codes")
	}
}
