package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/fibengine/internal/format"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/progress"
	"github.com/agbru/fibengine/internal/ui"
)

const (
	// ProgressRefreshRate is the spinner redraw interval.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth is the width in characters of the progress bar.
	ProgressBarWidth = 40
	// BatchPreview is the number of batch elements shown without --verbose.
	BatchPreview = 8
	// TruncationLimit is the digit count from which an exact value is
	// shortened to its edges.
	TruncationLimit = 100
	// DisplayEdges is the number of digits kept at each edge of a shortened
	// value.
	DisplayEdges = 25
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested.
type Spinner interface {
	Start()
	Stop()
	UpdateSuffix(suffix string)
}

// realSpinner adapts *spinner.Spinner to Spinner.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start()                     { rs.s.Start() }
func (rs *realSpinner) Stop()                      { rs.s.Stop() }
func (rs *realSpinner) UpdateSuffix(suffix string) { rs.s.Suffix = suffix }

var newSpinner = func(options ...spinner.Option) Spinner {
	return &realSpinner{spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)}
}

// DisplayProgress shows a spinner with the average progress of
// numCalculators calculators until progressChan is closed, then prints a
// full bar. With zero calculators it only drains the channel.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan progress.ProgressUpdate, numCalculators int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(numCalculators)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out))
	label := "Computing"
	if agg.IsMultiCalculator() {
		label = fmt.Sprintf("Computing (%d algorithms)", numCalculators)
	}
	render := func(p float64, eta time.Duration) string {
		suffix := fmt.Sprintf(" %s %s %5.1f%%", label, progressBar(p, ProgressBarWidth), p*100)
		if eta > 0 {
			suffix += " ETA " + format.FormatExecutionDuration(eta)
		}
		return suffix
	}
	s.UpdateSuffix(render(0, 0))
	s.Start()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				fmt.Fprintf(out, "%s %s 100.0%%\n", label, progressBar(1, ProgressBarWidth))
				return
			}
			state := agg.Update(update)
			s.UpdateSuffix(render(state.AverageProgress, state.ETA))
		case <-ticker.C:
			s.UpdateSuffix(render(agg.CalculateAverage(), agg.GetETA()))
		}
	}
}

// progressBar renders a bar of length characters filled to p (clamped to
// [0, 1]).
func progressBar(p float64, length int) string {
	p = min(max(p, 0), 1)
	filled := int(p * float64(length))
	return strings.Repeat("█", filled) + strings.Repeat("░", length-filled)
}

// CLIColorProvider implements apperrors.ColorProvider with the active theme.
type CLIColorProvider struct{}

func (CLIColorProvider) Red() string    { return ui.ColorRed() }
func (CLIColorProvider) Yellow() string { return ui.ColorYellow() }
func (CLIColorProvider) Reset() string  { return ui.ColorReset() }
