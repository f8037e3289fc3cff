package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// Theme state is global; these tests do not run in parallel.

func TestSetTheme(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	tests := []struct {
		name string
		want string
	}{
		{"dark", "dark"},
		{"light", "light"},
		{"none", "none"},
		{"unknown", "dark"},
	}
	for _, tt := range tests {
		SetTheme(tt.name)
		if got := GetCurrentTheme().Name; got != tt.want {
			t.Errorf("SetTheme(%q) -> %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInitTheme(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	InitTheme(true)
	if ColorRed() != "" || ColorReset() != "" {
		t.Error("noColor must disable escape codes")
	}
	if _, ok := GetCurrentTUITheme().Accent.(lipgloss.NoColor); !ok {
		t.Error("noColor must disable TUI colors")
	}

	t.Setenv("NO_COLOR", "1")
	InitTheme(false)
	if GetCurrentTheme().Name != "none" {
		t.Error("NO_COLOR must disable colors")
	}
}

func TestColorFunctions(t *testing.T) {
	saved := GetCurrentTheme()
	t.Cleanup(func() { SetCurrentTheme(saved) })

	SetCurrentTheme(DarkTheme)
	if ColorGreen() != DarkTheme.Success || ColorRed() != DarkTheme.Error || ColorBold() != DarkTheme.Bold {
		t.Error("color functions must follow the active theme")
	}
}
