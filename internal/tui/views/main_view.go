package views

import (
	"aspect/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// ViewModel is what the main view reads from the viewer.
type ViewModel interface {
	Size() (width, height int)
	Image(cols, rows int) string
	Sidebar(rows int) string
	SidebarWidth() int
	StatusLine() string
	HelpView() string
}

// RenderMainView lays out the image centred above the status line and the
// key help, with the side panels on the left when shown.
func RenderMainView(m ViewModel) string {
	width, height := m.Size()
	if width <= 0 || height <= 0 {
		return "Loading…"
	}

	status := m.StatusLine()
	helpView := m.HelpView()
	footer := lipgloss.JoinVertical(lipgloss.Left, status, helpView)
	rows := max(height-lipgloss.Height(footer), 1)

	cols := width
	sidebar := m.Sidebar(rows)
	if sidebar != "" {
		cols = max(width-m.SidebarWidth(), 1)
	}

	image := lipgloss.Place(cols, rows, lipgloss.Center, lipgloss.Center, m.Image(cols, rows))
	body := image
	if sidebar != "" {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, image)
	}

	return styles.App.Render(lipgloss.JoinVertical(lipgloss.Left, body, footer))
}

// Stack joins panels vertically.
func Stack(panels ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}
