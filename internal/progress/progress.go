// Package progress defines the progress types shared by the engine, the
// benchmark harness and the presentation layers.
package progress

import "sync"

// ProgressUpdate is a progress report from one calculator in a benchmark run.
type ProgressUpdate struct {
	// CalculatorIndex identifies the calculator sending the update.
	CalculatorIndex int
	// Value is the completed fraction, from 0.0 to 1.0.
	Value float64
}

// ProgressCallback receives completed fractions from 0.0 to 1.0.
type ProgressCallback func(float64)

// Tracker converts completed work units into a ProgressCallback stream.
// Reports are serialised and never decrease, even when Add is called from
// several goroutines. A nil Tracker or callback is a no-op.
type Tracker struct {
	mu    sync.Mutex
	cb    ProgressCallback
	total uint64
	done  uint64
	last  float64
}

// NewTracker returns a Tracker for total work units reporting to cb.
func NewTracker(total uint64, cb ProgressCallback) *Tracker {
	return &Tracker{cb: cb, total: total}
}

// Add records units of completed work and reports the new fraction.
func (t *Tracker) Add(units uint64) {
	if t == nil || t.cb == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done += units
	if t.done > t.total {
		t.done = t.total
	}
	value := 1.0
	if t.total > 0 {
		value = float64(t.done) / float64(t.total)
	}
	if value < t.last {
		return
	}
	t.last = value
	t.cb(value)
}

// Finish reports completion (1.0) unless it was already reported.
func (t *Tracker) Finish() {
	if t == nil || t.cb == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last >= 1.0 {
		return
	}
	t.done = t.total
	t.last = 1.0
	t.cb(1.0)
}

// ChannelCallback returns a callback that forwards values to ch tagged with
// index. Sends are non-blocking: an update is dropped when the channel is
// full, since a later one supersedes it.
func ChannelCallback(ch chan<- ProgressUpdate, index int) ProgressCallback {
	if ch == nil {
		return nil
	}
	return func(v float64) {
		select {
		case ch <- ProgressUpdate{CalculatorIndex: index, Value: v}:
		default:
		}
	}
}
