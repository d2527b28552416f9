package orchestration

import (
	"time"

	"github.com/agbru/fibengine/internal/progress"
)

// ProgressAggregator averages the progress of several calculators and
// estimates the remaining time from the average rate so far. It is meant
// for the single goroutine consuming a progress channel.
type ProgressAggregator struct {
	values []float64
	start  time.Time
	now    func() time.Time
}

// AggregatedProgress is the state after one update.
type AggregatedProgress struct {
	CalculatorIndex int
	Value           float64
	AverageProgress float64
	ETA             time.Duration
}

// NewProgressAggregator tracks numCalculators calculators. Returns nil if
// numCalculators <= 0.
func NewProgressAggregator(numCalculators int) *ProgressAggregator {
	if numCalculators <= 0 {
		return nil
	}
	return &ProgressAggregator{
		values: make([]float64, numCalculators),
		start:  time.Now(),
		now:    time.Now,
	}
}

// Update records an update and returns the aggregated state. Updates for
// unknown indices are ignored; values are clamped to [0, 1].
func (a *ProgressAggregator) Update(update progress.ProgressUpdate) AggregatedProgress {
	if update.CalculatorIndex >= 0 && update.CalculatorIndex < len(a.values) {
		a.values[update.CalculatorIndex] = min(max(update.Value, 0), 1)
	}
	return AggregatedProgress{
		CalculatorIndex: update.CalculatorIndex,
		Value:           update.Value,
		AverageProgress: a.CalculateAverage(),
		ETA:             a.GetETA(),
	}
}

// CalculateAverage returns the mean progress.
func (a *ProgressAggregator) CalculateAverage() float64 {
	var sum float64
	for _, v := range a.values {
		sum += v
	}
	return sum / float64(len(a.values))
}

// GetETA extrapolates the remaining time linearly. Zero means unknown or
// done.
func (a *ProgressAggregator) GetETA() time.Duration {
	avg := a.CalculateAverage()
	if avg <= 0 || avg >= 1 {
		return 0
	}
	elapsed := a.now().Sub(a.start)
	return time.Duration(float64(elapsed) * (1 - avg) / avg)
}

// NumCalculators returns the number of calculators being tracked.
func (a *ProgressAggregator) NumCalculators() int {
	return len(a.values)
}

// IsMultiCalculator reports whether more than one calculator is tracked.
func (a *ProgressAggregator) IsMultiCalculator() bool {
	return len(a.values) > 1
}

// DrainChannel discards updates until the channel is closed.
func DrainChannel(progressChan <-chan progress.ProgressUpdate) {
	for range progressChan {
	}
}
