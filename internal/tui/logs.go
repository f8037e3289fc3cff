package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/agbru/hashprobe/internal/collision"
	"github.com/agbru/hashprobe/internal/config"
	"github.com/agbru/hashprobe/internal/format"
)

// maxLoggedCollisions caps the collision lines appended after a run.
const maxLoggedCollisions = 200

// LogsModel is the scrollable event log of a run.
type LogsModel struct {
	viewport   viewport.Model
	entries    []string
	numWorkers int
	width      int
	height     int
}

// NewLogsModel creates an empty log for a run with numWorkers workers.
func NewLogsModel(numWorkers int) LogsModel {
	return LogsModel{viewport: viewport.New(0, 0), numWorkers: numWorkers}
}

// SetSize updates dimensions.
func (l *LogsModel) SetSize(w, h int) {
	l.width = w
	l.height = h
	l.viewport.Width = max(w-4, 0)
	l.viewport.Height = max(h-3, 0)
	l.refresh()
}

// Update forwards scrolling keys to the viewport.
func (l *LogsModel) Update(msg tea.Msg) {
	l.viewport, _ = l.viewport.Update(msg)
}

// Entries returns the raw log lines.
func (l LogsModel) Entries() []string { return l.entries }

// Reset clears the log.
func (l *LogsModel) Reset() {
	l.entries = nil
	l.refresh()
}

func (l *LogsModel) add(line string) {
	l.entries = append(l.entries, logTimeStyle.Render(time.Now().Format("15:04:05"))+" "+line)
	l.refresh()
}

// refresh re-renders the content, following the tail unless the user has
// scrolled up.
func (l *LogsModel) refresh() {
	follow := l.viewport.AtBottom()
	l.viewport.SetContent(strings.Join(l.entries, "\n"))
	if follow {
		l.viewport.GotoBottom()
	}
}

// AddExecutionConfig logs the run parameters.
func (l *LogsModel) AddExecutionConfig(cfg config.AppConfig) {
	l.add(fmt.Sprintf("Probing %s inputs with %s", format.FormatCount(cfg.N), cfg.Oracle))
	mode := "tolerant"
	if cfg.FailFast {
		mode = "fail-fast"
	}
	l.add(fmt.Sprintf("Workers: %d, probe timeout %s, run timeout %s, %s", cfg.Workers, cfg.ProbeTimeout, cfg.Timeout, mode))
}

// AddWorkerDone logs a worker's final progress update.
func (l *LogsModel) AddWorkerDone(msg ProgressMsg) {
	l.add(logWorkerStyle.Render(fmt.Sprintf("worker %d", msg.WorkerIndex+1)) +
		fmt.Sprintf(" done (%d/%d finished)", msg.WorkersDone, l.numWorkers))
}

// AddMerging logs that every worker has published and the merge started.
func (l *LogsModel) AddMerging(workers int) {
	l.add(fmt.Sprintf("All %d workers finished, merging results", workers))
}

// AddReport logs the outcome of a run and its collisions.
func (l *LogsModel) AddReport(r collision.Report) {
	summary := fmt.Sprintf("Total collisions found: %d out of %d hashes", r.TotalCollisions, r.N)
	if r.TotalCollisions > 0 {
		l.add(logCollisionStyle.Render(summary))
	} else {
		l.add(logSuccessStyle.Render(summary))
	}
	l.add(fmt.Sprintf("local %d, global %d, distinct %d, failures %d, in %s",
		r.LocalCollisions, r.GlobalCollisions, r.DistinctHashes, r.Failures, format.FormatExecutionDuration(r.Duration)))
	for i, c := range r.Collisions {
		if i == maxLoggedCollisions {
			l.add(fmt.Sprintf("... %d more collisions", len(r.Collisions)-i))
			break
		}
		l.add(logCollisionStyle.Render(fmt.Sprintf("%-6s %s", c.Scope, c.Hash)) + fmt.Sprintf("  %d / %d", c.First, c.Second))
	}
	for i, f := range r.FailureRecords {
		if i == maxLoggedCollisions {
			l.add(fmt.Sprintf("... %d more failures", len(r.FailureRecords)-i))
			break
		}
		l.add(logErrorStyle.Render(fmt.Sprintf("input %d: %v", f.Input, f.Err)))
	}
}

// AddError logs a run error.
func (l *LogsModel) AddError(msg ErrorMsg) {
	l.add(logErrorStyle.Render(fmt.Sprintf("Error: %v", msg.Err)))
}

// renderToHeight renders the panel at height h.
func (l LogsModel) renderToHeight(h int) string {
	l.viewport.Height = max(h-3, 0)
	title := panelTitleStyle.Render(" Events")
	return panelStyle.
		Width(max(l.width-2, 0)).
		Height(max(h-2, 0)).
		Render(title + "\n" + l.viewport.View())
}
