package ui

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette for the UI
type Theme struct {
	Primary lipgloss.Color // main accent color (tool names, highlights)
	Success lipgloss.Color // success states
	Error   lipgloss.Color // error states
	Warning lipgloss.Color // warnings and notices
	Muted   lipgloss.Color // dimmed/secondary text
	Border  lipgloss.Color // borders and dividers
}

// DefaultTheme returns the default color theme (gruvbox)
func DefaultTheme() *Theme {
	return &Theme{
		Primary: lipgloss.Color("#b8bb26"), // gruvbox green
		Success: lipgloss.Color("#b8bb26"), // gruvbox green
		Error:   lipgloss.Color("#fb4934"), // gruvbox red
		Warning: lipgloss.Color("#fabd2f"), // gruvbox yellow
		Muted:   lipgloss.Color("#928374"), // gruvbox gray
		Border:  lipgloss.Color("#83a598"), // gruvbox aqua
	}
}

// currentTheme is the active theme instance
var currentTheme = DefaultTheme()

// GetTheme returns the current active theme
func GetTheme() *Theme {
	return currentTheme
}

// Styles derived from the theme, rebuilt lazily by accessors so theme
// changes take effect.

func toolNameStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme.Primary).Bold(true)
}

func successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme.Success)
}

func errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme.Error)
}

func noticeStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme.Warning)
}

func mutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(currentTheme.Muted)
}

func cardStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(currentTheme.Border).
		Padding(0, 1)
}
