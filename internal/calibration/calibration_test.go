package calibration

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/fibengine/internal/config"
	apperrors "github.com/agbru/fibengine/internal/errors"
)

type plainColors struct{}

func (plainColors) Red() string    { return "" }
func (plainColors) Yellow() string { return "" }
func (plainColors) Reset() string  { return "" }

func TestMeasure(t *testing.T) {
	t.Parallel()
	results, best, err := Measure(context.Background(), Options{
		N:          30,
		Count:      8192,
		Repeats:    2,
		Candidates: []int{1, 2, 4},
	})
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	found := false
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("workers=%d failed: %v", r.Workers, r.Err)
		}
		if r.Workers == best {
			found = true
		}
	}
	if !found {
		t.Errorf("best=%d is not a candidate", best)
	}
}

func TestMeasureCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Measure(ctx, Options{N: 30, Count: 8192, Candidates: []int{1, 2}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Measure() error = %v, want context.Canceled", err)
	}
}

func TestRunCalibrationSavesProfile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "profile.json")
	cfg := config.AppConfig{N: 20, Count: 100, CalibrationProfile: path}
	var out bytes.Buffer

	if code := RunCalibration(context.Background(), cfg, &out, plainColors{}); code != apperrors.ExitSuccess {
		t.Fatalf("RunCalibration() = %d, output:\n%s", code, out.String())
	}
	for _, want := range []string{"Calibration Summary", "Sequential", "(Optimal)", "Profile saved to " + path} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}

	profile, err := loadProfile(path)
	if err != nil {
		t.Fatal(err)
	}
	if profile.OptimalWorkers < 1 || profile.CalibrationCount != MinCalibrationCount || profile.CalibrationN != 20 {
		t.Errorf("unexpected profile: %s", profile)
	}

	loaded, ok := LoadCachedCalibration(cfg)
	if !ok || loaded.Workers != profile.OptimalWorkers {
		t.Errorf("LoadCachedCalibration() = (%d, %v), want (%d, true)", loaded.Workers, ok, profile.OptimalWorkers)
	}
}

func TestRunCalibrationCanceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := config.AppConfig{N: 20, CalibrationProfile: filepath.Join(t.TempDir(), "p.json")}
	var out bytes.Buffer
	if code := RunCalibration(ctx, cfg, &out, plainColors{}); code != apperrors.ExitErrorCanceled {
		t.Errorf("RunCalibration() = %d, want %d", code, apperrors.ExitErrorCanceled)
	}
}

func TestLoadCachedCalibrationKeepsExplicitWorkers(t *testing.T) {
	t.Parallel()
	cfg := config.AppConfig{Workers: 3, CalibrationProfile: filepath.Join(t.TempDir(), "missing.json")}
	if got, ok := LoadCachedCalibration(cfg); ok || got.Workers != 3 {
		t.Errorf("LoadCachedCalibration() = (%d, %v)", got.Workers, ok)
	}
	cfg.Workers = 0
	if _, ok := LoadCachedCalibration(cfg); ok {
		t.Error("missing profile reported as loaded")
	}
}

func TestAutoCalibrate(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer

	small := config.AppConfig{N: 20, Count: 10}
	if _, ok := AutoCalibrate(context.Background(), small, &out); ok {
		t.Error("small batch should not be calibrated")
	}

	large := config.AppConfig{N: 20, Count: 1 << 20}
	got, ok := AutoCalibrate(context.Background(), large, &out)
	if !ok || got.Workers < 1 {
		t.Fatalf("AutoCalibrate() = (%d, %v)", got.Workers, ok)
	}
	if !strings.Contains(out.String(), "Auto-calibration") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAutoCalibrate_IgnoresRequestedIndex(t *testing.T) {
	t.Parallel()
	cfg := config.AppConfig{N: 4_000_000_000, Count: 1 << 20, Quiet: true}

	start := time.Now()
	got, ok := AutoCalibrate(context.Background(), cfg, io.Discard)
	if !ok || got.Workers < 1 {
		t.Fatalf("AutoCalibrate() = (%d, %v)", got.Workers, ok)
	}
	if elapsed := time.Since(start); elapsed > quickBudget+time.Second {
		t.Errorf("AutoCalibrate took %s", elapsed)
	}
}

func TestAutoCalibrate_ExpiredContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := config.AppConfig{N: 20, Count: 1 << 20}
	if got, ok := AutoCalibrate(ctx, cfg, io.Discard); ok || got.Workers != 0 {
		t.Errorf("AutoCalibrate(canceled) = (%d, %v), want (0, false)", got.Workers, ok)
	}
}
