package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// FooterModel renders the run status and the key help.
type FooterModel struct {
	help    help.Model
	keymap  KeyMap
	width   int
	paused  bool
	done    bool
	failed  bool
	showAll bool
}

// NewFooterModel creates a footer for keymap.
func NewFooterModel(keymap KeyMap) FooterModel {
	h := help.New()
	h.Styles.ShortKey = footerKeyStyle
	h.Styles.ShortDesc = footerDescStyle
	h.Styles.FullKey = footerKeyStyle
	h.Styles.FullDesc = footerDescStyle
	return FooterModel{help: h, keymap: keymap}
}

// SetWidth updates the available width.
func (f *FooterModel) SetWidth(w int) {
	f.width = w
	f.help.Width = w
}

// SetPaused sets the paused indicator.
func (f *FooterModel) SetPaused(p bool) { f.paused = p }

// SetDone marks the run as finished.
func (f *FooterModel) SetDone(d bool) { f.done = d }

// SetError marks the run as failed.
func (f *FooterModel) SetError(e bool) { f.failed = e }

// ToggleHelp switches between the short and the full key help.
func (f *FooterModel) ToggleHelp() {
	f.showAll = !f.showAll
	f.help.ShowAll = f.showAll
}

// Height returns the number of rows the footer occupies.
func (f FooterModel) Height() int {
	return lipgloss.Height(f.View())
}

func (f FooterModel) status() string {
	switch {
	case f.failed:
		return statusErrorStyle.Render("FAILED")
	case f.done:
		return statusDoneStyle.Render("DONE")
	case f.paused:
		return statusPausedStyle.Render("PAUSED")
	default:
		return statusRunningStyle.Render("RUNNING")
	}
}

// View renders the footer.
func (f FooterModel) View() string {
	return f.status() + "  " + f.help.View(f.keymap)
}
