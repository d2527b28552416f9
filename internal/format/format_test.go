package format

import (
	"testing"
	"time"
)

func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want string
	}{
		{500 * time.Nanosecond, "500ns"},
		{42 * time.Microsecond, "42µs"},
		{12 * time.Millisecond, "12ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90*time.Second + 1234*time.Microsecond, "1m30.001s"},
	}
	for _, tt := range tests {
		if got := FormatExecutionDuration(tt.in); got != tt.want {
			t.Errorf("FormatExecutionDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatPerOp(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d    time.Duration
		ops  uint64
		want string
	}{
		{time.Microsecond, 0, "-"},
		{time.Microsecond, 100, "10.0ns/op"},
		{time.Millisecond, 100, "10.00µs/op"},
		{time.Second, 100, "10.00ms/op"},
	}
	for _, tt := range tests {
		if got := FormatPerOp(tt.d, tt.ops); got != tt.want {
			t.Errorf("FormatPerOp(%v, %d) = %q, want %q", tt.d, tt.ops, got, tt.want)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   uint64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{4000, "3.9 KiB"},
		{5 << 20, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.in); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSpeedup(t *testing.T) {
	t.Parallel()
	if got := FormatSpeedup(10, 4); got != "2.50x" {
		t.Errorf("FormatSpeedup(10, 4) = %q", got)
	}
	if got := FormatSpeedup(0, 4); got != "N/A" {
		t.Errorf("FormatSpeedup(0, 4) = %q", got)
	}
	if got := FormatSpeedup(4, 0); got != "N/A" {
		t.Errorf("FormatSpeedup(4, 0) = %q", got)
	}
}

func TestFormatThousands(t *testing.T) {
	t.Parallel()
	tests := map[uint64]string{
		0:          "0",
		999:        "999",
		1000:       "1,000",
		2971215073: "2,971,215,073",
		100000:     "100,000",
	}
	for in, want := range tests {
		if got := FormatThousands(in); got != want {
			t.Errorf("FormatThousands(%d) = %q, want %q", in, got, want)
		}
	}
}
