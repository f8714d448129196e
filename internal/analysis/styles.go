package analysis

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles contains the styling definitions for report formatting.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Header   lipgloss.Style
	Positive lipgloss.Style
	Negative lipgloss.Style
	Subtle   lipgloss.Style
	Normal   lipgloss.Style
}

// NewStyles creates a new Styles instance with default styling.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A78BFA")).
			MarginBottom(1),
		Subtitle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1D3")),
		Positive: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4")),
		Negative: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")),
		Subtle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")),
		Normal: lipgloss.NewStyle(),
	}
}
