// Package ui holds the color themes shared by the terminal output and the
// dashboard. The "none" theme, selected by -no-color or NO_COLOR, turns
// every color helper into an empty string.
package ui
