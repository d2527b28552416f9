package tui

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/fibengine/internal/config"
	apperrors "github.com/agbru/fibengine/internal/errors"
	"github.com/agbru/fibengine/internal/fibonacci"
	"github.com/agbru/fibengine/internal/metrics"
	"github.com/agbru/fibengine/internal/orchestration"
	"github.com/agbru/fibengine/internal/sysmon"
)

// Layout constants for the dashboard.
const (
	headerHeight             = 1
	footerHeight             = 1
	minBodyHeight            = 8
	ResultsPanelWidthPercent = 62
	MetricsPanelHeight       = 7
	tickInterval             = 500 * time.Millisecond
)

// ExecutionState holds the execution-related fields of a session.
type ExecutionState struct {
	ctx         context.Context
	cancel      context.CancelFunc
	calculators []fibonacci.Calculator
	generation  uint64
	done        bool
	exitCode    int
}

// LayoutManager holds terminal dimensions and derives panel sizes.
type LayoutManager struct {
	width  int
	height int
}

func (l LayoutManager) bodyHeight() int {
	return max(l.height-headerHeight-footerHeight, minBodyHeight)
}

func (l LayoutManager) resultsWidth() int {
	return l.width * ResultsPanelWidthPercent / 100
}

func (l LayoutManager) rightWidth() int {
	return l.width - l.resultsWidth()
}

func (l LayoutManager) metricsHeight() int {
	return min(MetricsPanelHeight, l.bodyHeight()/2)
}

func (l LayoutManager) chartHeight() int {
	return l.bodyHeight() - l.metricsHeight()
}

// Model is the root bubbletea model of the dashboard.
type Model struct {
	header  HeaderModel
	results ResultsModel
	metrics MetricsModel
	chart   ChartModel
	footer  FooterModel

	keymap KeyMap

	ExecutionState
	LayoutManager

	parentCtx context.Context
	spec      orchestration.BenchmarkSpec
	ref       *programRef
	paused    bool
}

// BenchmarkSpecFor derives the benchmark parameters from the
// configuration.
func BenchmarkSpecFor(cfg config.AppConfig) orchestration.BenchmarkSpec {
	gcMode, err := metrics.ParseGCMode(cfg.GCMode)
	if err != nil {
		gcMode = metrics.GCModeNormal
	}
	return orchestration.BenchmarkSpec{
		N:           cfg.Index(),
		Count:       cfg.BatchCount(),
		Parallelism: cfg.Parallelism,
		Baseline:    fibonacci.AlgoIterative,
		GCMode:      gcMode,
	}
}

// NewModel creates a dashboard benchmarking calculators.
func NewModel(parentCtx context.Context, calculators []fibonacci.Calculator, cfg config.AppConfig, version string) Model {
	names := make([]string, len(calculators))
	for i, c := range calculators {
		names[i] = c.Name()
	}
	spec := BenchmarkSpecFor(cfg)
	ctx, cancel := context.WithCancel(parentCtx)
	keys := DefaultKeyMap()

	return Model{
		header:  NewHeaderModel(version, spec.N, spec.Count),
		results: NewResultsModel(names, spec.Count),
		metrics: NewMetricsModel(),
		chart:   NewChartModel(),
		footer:  NewFooterModel(keys),
		keymap:  keys,
		ExecutionState: ExecutionState{
			ctx:         ctx,
			cancel:      cancel,
			calculators: calculators,
			exitCode:    apperrors.ExitSuccess,
		},
		parentCtx: parentCtx,
		spec:      spec,
		ref:       &programRef{},
	}
}

// Init starts the benchmark, the sampling ticker and the context watcher.
func (m Model) Init() tea.Cmd {
	return m.startCmds()
}

func (m Model) startCmds() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startBenchmarkCmd(m.ref, m.ctx, m.calculators, m.spec, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if msg.Generation == m.generation && !m.paused {
			m.results.SetProgress(msg.CalculatorIndex, msg.Value)
			m.chart.AddDataPoint(msg.AverageProgress, msg.ETA)
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case BenchmarkReportMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.results.SetReport(msg.Report)
		m.metrics.UpdateReport(msg.Report)
		return m, nil

	case ErrorMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.results.SetStatus("Benchmark failed: "+msg.Err.Error(), true)
		m.footer.SetError(true)
		return m, nil

	case TickMsg:
		if m.done {
			return m, nil
		}
		if !m.paused {
			return m, tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(m.ctx), tickCmd())
		}
		return m, tickCmd()

	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
		return m, nil

	case SysStatsMsg:
		m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		return m, nil

	case CalculationCompleteMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.exitCode = msg.ExitCode
		m.header.SetDone()
		m.chart.SetDone(m.header.Elapsed())
		m.footer.SetDone(true)
		switch msg.ExitCode {
		case apperrors.ExitSuccess:
			m.results.SetStatus("All valid results are consistent.", false)
		case apperrors.ExitErrorMismatch:
			m.results.SetStatus("Inconsistency detected between results!", true)
			m.footer.SetError(true)
		}
		return m, nil

	case ContextCancelledMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.done = true
		m.header.SetDone()
		m.footer.SetDone(true)
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)
		return m, nil

	case key.Matches(msg, m.keymap.Reset):
		if m.cancel != nil {
			m.cancel()
		}
		m.generation++
		m.ctx, m.cancel = context.WithCancel(m.parentCtx)

		m.header.Reset()
		m.results.Reset()
		m.chart.Reset()
		m.metrics = NewMetricsModel()
		m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
		m.footer.SetDone(false)
		m.footer.SetError(false)
		m.footer.SetPaused(false)
		m.done = false
		m.paused = false
		m.exitCode = apperrors.ExitSuccess
		return m, m.startCmds()

	case key.Matches(msg, m.keymap.Up):
		m.results.MoveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		m.results.MoveCursor(1)
		return m, nil
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	rightCol := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.results.View(), rightCol)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.results.SetSize(m.resultsWidth(), m.bodyHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// Run shows the dashboard until the user quits or ctx is cancelled and
// returns the benchmark exit code.
func Run(ctx context.Context, calculators []fibonacci.Calculator, cfg config.AppConfig, version string) int {
	// Styles depend on the theme chosen by the application.
	initTUIStyles()

	model := NewModel(ctx, calculators, cfg, version)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return apperrors.ExitCodeFor(ctx.Err())
		}
		return apperrors.ExitErrorGeneric
	}
	if m, ok := finalModel.(Model); ok {
		m.cancel()
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startBenchmarkCmd runs and analyses the benchmark off the UI goroutine.
func startBenchmarkCmd(ref *programRef, ctx context.Context, calculators []fibonacci.Calculator, spec orchestration.BenchmarkSpec, gen uint64) tea.Cmd {
	return func() tea.Msg {
		reporter := &TUIProgressReporter{ref: ref, generation: gen}
		presenter := &TUIResultPresenter{ref: ref, generation: gen}
		results := orchestration.RunBenchmark(ctx, calculators, spec, reporter, io.Discard)
		exitCode := orchestration.AnalyzeBenchmark(results, spec, presenter, presenter, io.Discard)
		return CalculationCompleteMsg{ExitCode: exitCode, Generation: gen}
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func sampleMemStatsCmd() tea.Cmd {
	return func() tea.Msg {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return MemStatsMsg{
			HeapAlloc:    ms.HeapAlloc,
			Sys:          ms.Sys,
			NumGC:        ms.NumGC,
			NumGoroutine: runtime.NumGoroutine(),
		}
	}
}

func sampleSysStatsCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		s := sysmon.Sample(ctx)
		return SysStatsMsg{CPUPercent: s.CPUPercent, MemPercent: s.MemPercent}
	}
}

// watchContextCmd waits for ctx to end.
func watchContextCmd(ctx context.Context, gen uint64) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err(), Generation: gen}
	}
}
