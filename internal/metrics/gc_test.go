package metrics

import (
	"runtime/debug"
	"testing"
)

func TestParseGCMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    GCMode
		wantErr bool
	}{
		{"", GCModeAuto, false},
		{"auto", GCModeAuto, false},
		{" PAUSE ", GCModePause, false},
		{"normal", GCModeNormal, false},
		{"aggressive", "", true},
	}
	for _, tt := range tests {
		got, err := ParseGCMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseGCMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseGCMode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewGCController_Active(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mode  GCMode
		count uint64
		want  bool
	}{
		{GCModeAuto, GCAutoThreshold - 1, false},
		{GCModeAuto, GCAutoThreshold, true},
		{GCModePause, 1, true},
		{GCModeNormal, 1 << 30, false},
		{"bogus", 1 << 30, false},
	}
	for _, tt := range tests {
		if got := NewGCController(tt.mode, tt.count).Active(); got != tt.want {
			t.Errorf("NewGCController(%q, %d).Active() = %v, want %v", tt.mode, tt.count, got, tt.want)
		}
	}
}

var gcSink [][]byte

// Not parallel: changes the process-wide GC percent.
func TestGCController_RestoresSettings(t *testing.T) {
	before := debug.SetGCPercent(100)
	defer debug.SetGCPercent(before)

	gc := NewGCController(GCModePause, 0)
	gc.Begin()
	if got := debug.SetGCPercent(-1); got != -1 {
		t.Errorf("GC percent during region = %d, want -1", got)
	}
	for range 64 {
		gcSink = append(gcSink, make([]byte, 1024))
	}
	gcSink = nil
	gc.End()

	if got := debug.SetGCPercent(100); got != 100 {
		t.Errorf("GC percent after End = %d, want 100", got)
	}
	if stats := gc.Stats(); stats.TotalAlloc < 64*1024 {
		t.Errorf("TotalAlloc = %d, want at least %d", stats.TotalAlloc, 64*1024)
	}
}

func TestGCController_InactiveIsNoop(t *testing.T) {
	t.Parallel()
	gc := NewGCController(GCModeNormal, 1<<20)
	gc.Begin()
	gc.End()
	if gc.Stats() != (GCStats{}) {
		t.Errorf("Stats() = %+v, want zero", gc.Stats())
	}
}
