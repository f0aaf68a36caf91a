package styles

import "github.com/charmbracelet/lipgloss"

// Styles defines the core UI styles
var (
	App = lipgloss.NewStyle()

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7B61FF"))

	Selected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#73F59F")).
			Bold(true)

	Unselected = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	Help = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#5A9"))

	Rating = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#F5C542"))

	Error = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FF5F5F"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#81A1C1"))
)

// PanelStyle frames the side panels.
var PanelStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#7B61FF"))
