// Package tui renders the admin console: static lipgloss views for CLI
// output and an interactive Bubble Tea dashboard.
package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#4C1D95", Dark: "#A78BFA"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	colorBorder  = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#374151"}
	colorError   = lipgloss.Color("#EF4444")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
)

// Styles groups the styles used by every view.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Card     lipgloss.Style
	CardNum  lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Cell     lipgloss.Style
	Current  lipgloss.Style
	Help     lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Header:  lipgloss.NewStyle().Bold(true).Padding(0, 1),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorBorder).Padding(0, 2),
		CardNum: lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted),
		Error:   lipgloss.NewStyle().Foreground(colorError),
		Success: lipgloss.NewStyle().Foreground(colorSuccess),
		Warning: lipgloss.NewStyle().Foreground(colorWarning),
		Cell:    lipgloss.NewStyle().Padding(0, 1),
		Current: lipgloss.NewStyle().Bold(true).Underline(true).Foreground(colorPrimary),
		Help:    lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

// PlainStyles renders without colour or decoration, for piped output and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title:    plain,
		Header:   plain.Padding(0, 1),
		Card:     plain.Border(lipgloss.NormalBorder()).Padding(0, 1),
		CardNum:  plain,
		Muted:    plain,
		Error:    plain,
		Success:  plain,
		Warning:  plain,
		Cell:     plain.Padding(0, 1),
		Current:  plain,
		Help:     plain,
	}
}
