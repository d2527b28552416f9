package orchestration

import (
	"testing"
	"time"

	"github.com/agbru/fibengine/internal/progress"
)

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	if NewProgressAggregator(0) != nil {
		t.Error("expected nil aggregator for zero calculators")
	}
	agg := NewProgressAggregator(3)
	if agg.NumCalculators() != 3 || !agg.IsMultiCalculator() {
		t.Errorf("NumCalculators=%d IsMulti=%v", agg.NumCalculators(), agg.IsMultiCalculator())
	}
	if NewProgressAggregator(1).IsMultiCalculator() {
		t.Error("single calculator reported as multi")
	}
}

func TestProgressAggregatorUpdate(t *testing.T) {
	t.Parallel()
	agg := NewProgressAggregator(2)
	now := agg.start
	agg.now = func() time.Time { return now }

	now = now.Add(time.Second)
	got := agg.Update(progress.ProgressUpdate{CalculatorIndex: 0, Value: 0.5})
	if got.AverageProgress != 0.25 {
		t.Errorf("average = %v, want 0.25", got.AverageProgress)
	}
	if got.ETA != 3*time.Second {
		t.Errorf("ETA = %v, want 3s", got.ETA)
	}

	got = agg.Update(progress.ProgressUpdate{CalculatorIndex: 1, Value: 7})
	if got.AverageProgress != 0.75 {
		t.Errorf("average = %v, want 0.75 (value clamped to 1)", got.AverageProgress)
	}

	agg.Update(progress.ProgressUpdate{CalculatorIndex: 5, Value: 1})
	agg.Update(progress.ProgressUpdate{CalculatorIndex: -1, Value: 1})
	if agg.CalculateAverage() != 0.75 {
		t.Errorf("out-of-range updates changed the average: %v", agg.CalculateAverage())
	}

	agg.Update(progress.ProgressUpdate{CalculatorIndex: 0, Value: 1})
	if agg.GetETA() != 0 {
		t.Errorf("ETA when done = %v, want 0", agg.GetETA())
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	ch := make(chan progress.ProgressUpdate, 3)
	ch <- progress.ProgressUpdate{Value: 0.1}
	ch <- progress.ProgressUpdate{Value: 0.2}
	close(ch)
	DrainChannel(ch)
	if len(ch) != 0 {
		t.Errorf("%d updates left", len(ch))
	}
}
