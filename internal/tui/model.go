// Package tui implements the interactive dashboard shown with -tui: per-worker
// progress, run counters, an event log and system sparklines.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/hashprobe/internal/config"
	apperrors "github.com/agbru/hashprobe/internal/errors"
	"github.com/agbru/hashprobe/internal/oracle"
	"github.com/agbru/hashprobe/internal/orchestration"
)

// Layout constants for the TUI dashboard.
const (
	headerHeight          = 1
	minBodyHeight         = 4
	LogsPanelWidthPercent = 55
	MetricsPanelHeight    = 8 // top line + 4 data rows + borders
)

// runState tracks the collision run currently driven by the dashboard.
// Every restart bumps generation so that messages from an abandoned run can
// be told apart and dropped.
type runState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	done       bool
	exitCode   int
}

func newRunState(parent context.Context) runState {
	ctx, cancel := context.WithCancel(parent)
	return runState{ctx: ctx, cancel: cancel, exitCode: apperrors.ExitSuccess}
}

// restart cancels the current run and prepares the next generation.
func (r *runState) restart(parent context.Context) {
	r.stop()
	gen := r.generation + 1
	*r = newRunState(parent)
	r.generation = gen
}

func (r *runState) stop() {
	if r.cancel != nil {
		r.cancel()
	}
}

// current reports whether a message tagged with gen belongs to this run.
func (r runState) current(gen uint64) bool { return gen == r.generation }

// layout splits the terminal between the panels: the event log on the
// left, metrics above the chart on the right.
type layout struct {
	width        int
	height       int
	footerHeight int
}

func (l layout) ready() bool { return l.width > 0 && l.height > 0 }

func (l layout) bodyHeight() int {
	return max(l.height-headerHeight-max(l.footerHeight, 1), minBodyHeight)
}

func (l layout) logsWidth() int     { return l.width * LogsPanelWidthPercent / 100 }
func (l layout) rightWidth() int    { return l.width - l.logsWidth() }
func (l layout) metricsHeight() int { return min(MetricsPanelHeight, l.bodyHeight()/2) }
func (l layout) chartHeight() int   { return l.bodyHeight() - l.metricsHeight() }

// Model is the root bubbletea model for the TUI dashboard.
type Model struct {
	header  HeaderModel
	logs    LogsModel
	metrics MetricsModel
	chart   ChartModel
	footer  FooterModel
	keymap  KeyMap

	runState
	layout

	parentCtx context.Context
	config    config.AppConfig
	runConfig orchestration.RunConfig
	oracle    oracle.Oracle
	ref       *programRef
	paused    bool
}

// NewModel creates a dashboard for one collision test. The run starts when
// the program calls Init.
func NewModel(parentCtx context.Context, o oracle.Oracle, cfg config.AppConfig, runCfg orchestration.RunConfig, version string) Model {
	keymap := DefaultKeyMap()
	logs := NewLogsModel(cfg.Workers)
	logs.AddExecutionConfig(cfg)
	return Model{
		header:    NewHeaderModel(version, o.Name(), cfg.N, cfg.Workers),
		logs:      logs,
		metrics:   NewMetricsModel(cfg.Workers),
		chart:     NewChartModel(cfg.Workers),
		footer:    NewFooterModel(keymap),
		keymap:    keymap,
		runState:  newRunState(parentCtx),
		parentCtx: parentCtx,
		config:    cfg,
		runConfig: runCfg,
		oracle:    o,
		ref:       &programRef{},
	}
}

// resetPanels clears every panel for a restarted run.
func (m *Model) resetPanels() {
	m.header.Reset()
	m.logs.Reset()
	m.logs.AddExecutionConfig(m.config)
	m.chart.Reset()
	m.metrics = NewMetricsModel(m.config.Workers)
	m.footer.SetDone(false)
	m.footer.SetError(false)
	m.footer.SetPaused(false)
	m.paused = false
	if m.ready() {
		m.layoutPanels()
	}
}

// Init starts the first run.
func (m Model) Init() tea.Cmd { return m.startCmds() }

func (m Model) startCmds() tea.Cmd {
	return tea.Batch(
		tickCmd(),
		startRunCmd(m.ref, m.ctx, m.oracle, m.config, m.runConfig, m.generation),
		watchContextCmd(m.ctx, m.generation),
	)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layoutPanels()
		return m, nil
	case TickMsg:
		return m, m.handleTick()
	case MemStatsMsg:
		m.metrics.UpdateMemStats(msg)
	case SysStatsMsg:
		m.chart.UpdateSysStats(msg.CPUPercent, msg.MemPercent)
		m.metrics.UpdateSysStats(msg)
		m.header.UpdateSysStats(msg)
	default:
		return m.handleRunMsg(msg)
	}
	return m, nil
}

// handleRunMsg applies messages produced by the orchestration bridge.
// Messages from an abandoned run generation are dropped.
func (m Model) handleRunMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ProgressMsg:
		if !m.current(msg.Generation) {
			break
		}
		// Pausing freezes the bars and the log, never the counters.
		m.metrics.UpdateCounters(msg)
		if m.paused {
			break
		}
		m.chart.AddDataPoint(msg.WorkerIndex, msg.Value, msg.AverageProgress, msg.ETA, msg.WorkerDone)
		if msg.WorkerDone {
			m.logs.AddWorkerDone(msg)
		}

	case ProgressDoneMsg:
		if !m.current(msg.Generation) {
			break
		}
		m.chart.ClearETA()
		if m.metrics.workersDone == m.config.Workers {
			m.logs.AddMerging(m.config.Workers)
		}

	case ReportMsg:
		if !m.current(msg.Generation) {
			break
		}
		m.logs.AddReport(msg.Report)

	case ErrorMsg:
		if !m.current(msg.Generation) {
			break
		}
		m.logs.AddError(msg)
		m.footer.SetError(true)
		m.finish()

	case RunCompleteMsg:
		if !m.current(msg.Generation) {
			break
		}
		m.exitCode = msg.ExitCode
		m.finish()
		m.chart.SetDone(m.header.Elapsed())

	case ContextCancelledMsg:
		if !m.current(msg.Generation) {
			break
		}
		if !m.done {
			m.exitCode = apperrors.ExitCodeFor(msg.Err)
		}
		m.finish()
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) finish() {
	m.done = true
	m.header.SetDone()
	m.footer.SetDone(true)
}

// handleTick samples the system while a run is live. Sampling stops with
// the run and pauses with the display.
func (m *Model) handleTick() tea.Cmd {
	switch {
	case m.done:
		return nil
	case m.paused:
		return tickCmd()
	default:
		m.chart.AddRate(m.metrics.Rate())
		return tea.Batch(sampleMemStatsCmd(), sampleSysStatsCmd(), tickCmd())
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.stop()
		if !m.done {
			m.exitCode = apperrors.ExitErrorCanceled
		}
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Pause):
		m.paused = !m.paused
		m.footer.SetPaused(m.paused)

	case key.Matches(msg, m.keymap.Help):
		m.footer.ToggleHelp()
		m.layoutPanels()

	case key.Matches(msg, m.keymap.Reset):
		m.restart(m.parentCtx)
		m.resetPanels()
		return m, m.startCmds()

	case key.Matches(msg, m.keymap.Up, m.keymap.Down, m.keymap.PageUp, m.keymap.PageDown):
		m.logs.Update(msg)
	}
	return m, nil
}

// View renders the entire dashboard.
func (m Model) View() string {
	if !m.ready() {
		return "Initializing..."
	}
	right := lipgloss.JoinVertical(lipgloss.Left, m.metrics.View(), m.chart.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, m.logs.renderToHeight(lipgloss.Height(right)), right)
	return lipgloss.JoinVertical(lipgloss.Left, m.header.View(), body, m.footer.View())
}

func (m *Model) layoutPanels() {
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.footerHeight = m.footer.Height()
	m.logs.SetSize(m.logsWidth(), m.bodyHeight())
	m.metrics.SetSize(m.rightWidth(), m.metricsHeight())
	m.chart.SetSize(m.rightWidth(), m.chartHeight())
}

// Run shows the dashboard until the user quits or ctx ends, and returns the
// exit code of the last run.
func Run(ctx context.Context, o oracle.Oracle, cfg config.AppConfig, runCfg orchestration.RunConfig, version string) int {
	initTUIStyles()

	model := NewModel(ctx, o, cfg, runCfg, version)
	defer model.stop()

	p := tea.NewProgram(model, tea.WithAltScreen())
	model.ref.SetProgram(p)

	final, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}
	m, ok := final.(Model)
	if !ok {
		return apperrors.ExitCodeFor(ctx.Err())
	}
	m.stop()
	return m.exitCode
}
