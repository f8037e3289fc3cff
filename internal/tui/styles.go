package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/hashprobe/internal/ui"
)

// Dashboard styles, derived from the active ui theme.
var (
	panelStyle         lipgloss.Style
	panelTitleStyle    lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	versionStyle       lipgloss.Style
	elapsedStyle       lipgloss.Style
	logTimeStyle       lipgloss.Style
	logWorkerStyle     lipgloss.Style
	logCollisionStyle  lipgloss.Style
	logSuccessStyle    lipgloss.Style
	logErrorStyle      lipgloss.Style
	metricLabelStyle   lipgloss.Style
	metricValueStyle   lipgloss.Style
	metricAlertStyle   lipgloss.Style
	footerKeyStyle     lipgloss.Style
	footerDescStyle    lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusPausedStyle  lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
	cpuSparklineStyle  lipgloss.Style
	memSparklineStyle  lipgloss.Style
	rateSparklineStyle lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Run calls it again once app.Run has applied -no-color and NO_COLOR.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()
	fg := func(c lipgloss.TerminalColor) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }
	bold := func(c lipgloss.TerminalColor) lipgloss.Style { return fg(c).Bold(true) }

	panelStyle = fg(t.Text).Border(lipgloss.RoundedBorder()).BorderForeground(t.Border)
	panelTitleStyle = bold(t.Info)

	headerStyle = bold(t.Accent).Padding(0, 1)
	titleStyle = bold(t.Accent)
	versionStyle = fg(t.Dim)
	elapsedStyle = fg(t.Accent)

	logTimeStyle = fg(t.Dim)
	logWorkerStyle = fg(t.Info)
	logCollisionStyle = fg(t.Warning)
	logSuccessStyle = fg(t.Success)
	logErrorStyle = fg(t.Error)

	metricLabelStyle = fg(t.Dim)
	metricValueStyle = bold(t.Accent)
	metricAlertStyle = bold(t.Warning)

	footerKeyStyle = bold(t.Accent)
	footerDescStyle = fg(t.Dim)

	statusRunningStyle = bold(t.Success)
	statusPausedStyle = bold(t.Warning)
	statusDoneStyle = bold(t.Accent)
	statusErrorStyle = bold(t.Error)

	cpuSparklineStyle = fg(t.Accent)
	memSparklineStyle = fg(t.Warning)
	rateSparklineStyle = fg(t.Success)
}
