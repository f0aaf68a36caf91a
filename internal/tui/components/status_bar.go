package components

import (
	"strings"

	"aspect/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// StatusBar shows one line of state, with a spinner while loading.
type StatusBar struct {
	parts   []string
	spinner spinner.Model
	loading bool
}

func NewStatusBar() *StatusBar {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Help

	return &StatusBar{spinner: s}
}

// SetLoading starts or stops the spinner. The returned command keeps the
// spinner animating and is nil when nothing changed.
func (s *StatusBar) SetLoading(loading bool) tea.Cmd {
	if loading == s.loading {
		return nil
	}
	s.loading = loading
	if loading {
		return s.spinner.Tick
	}
	return nil
}

func (s *StatusBar) Loading() bool {
	return s.loading
}

// SetParts replaces the status fields.
func (s *StatusBar) SetParts(parts ...string) {
	s.parts = s.parts[:0]
	for _, p := range parts {
		if p != "" {
			s.parts = append(s.parts, p)
		}
	}
}

func (s *StatusBar) Update(msg tea.Msg) tea.Cmd {
	if !s.loading {
		return nil
	}
	var cmd tea.Cmd
	s.spinner, cmd = s.spinner.Update(msg)
	return cmd
}

func (s *StatusBar) View() string {
	text := strings.Join(s.parts, " • ")
	if s.loading {
		return styles.Help.Render(s.spinner.View() + " " + text)
	}
	return styles.Help.Render(text)
}
