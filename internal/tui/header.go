package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/hashprobe/internal/format"
)

// HeaderModel renders the top bar: title, oracle, elapsed time and the
// latest system sample.
type HeaderModel struct {
	startTime time.Time
	endTime   time.Time
	version   string
	oracle    string
	n         int64
	workers   int
	sys       SysStatsMsg
	width     int
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version, oracle string, n int64, workers int) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
		oracle:    oracle,
		n:         n,
		workers:   workers,
	}
}

// SetDone freezes the elapsed timer at the current time.
func (h *HeaderModel) SetDone() {
	h.endTime = time.Now()
}

// Reset restarts the elapsed timer.
func (h *HeaderModel) Reset() {
	h.startTime = time.Now()
	h.endTime = time.Time{}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// UpdateSysStats stores the latest system sample.
func (h *HeaderModel) UpdateSysStats(s SysStatsMsg) {
	h.sys = s
}

// Elapsed returns the time since start, frozen once done.
func (h HeaderModel) Elapsed() time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return time.Since(h.startTime)
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "hashprobe"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	title := titleStyle.Render(titleText)

	pipe := versionStyle.Render(" | ")
	run := versionStyle.Render(fmt.Sprintf("%s  N=%s  P=%d", h.oracle, format.FormatCount(h.n), h.workers))
	elapsed := elapsedStyle.Render(fmt.Sprintf("Elapsed: %s", format.FormatExecutionDuration(h.Elapsed())))
	leftPart := title + pipe + run + pipe + elapsed

	right := versionStyle.Render(fmt.Sprintf("CPU %3.0f%%  MEM %3.0f%%  oracles %d",
		h.sys.CPUPercent, h.sys.MemPercent, h.sys.Children))

	innerWidth := max(h.width-2, 0)
	gap := innerWidth - lipgloss.Width(leftPart) - lipgloss.Width(right)
	row := leftPart
	if gap > 0 {
		row += strings.Repeat(" ", gap) + right
	}

	return headerStyle.Width(h.width).Render(row)
}
