package components

import (
	"fmt"
	"sort"
	"strings"

	"aspect/internal/metadata"
	"aspect/internal/tui/styles"
)

// InfoPanel shows the details of the selected image.
type InfoPanel struct {
	info   *metadata.Info
	err    error
	width  int
	height int
}

func NewInfoPanel() *InfoPanel {
	return &InfoPanel{}
}

func (p *InfoPanel) SetInfo(info *metadata.Info, err error) {
	p.info, p.err = info, err
}

func (p *InfoPanel) SetSize(width, height int) {
	p.width, p.height = width, height
}

func (p *InfoPanel) View() string {
	var s strings.Builder
	s.WriteString(styles.Title.Render("Details"))
	s.WriteByte('\n')

	switch {
	case p.err != nil:
		s.WriteString(styles.Error.Render(p.err.Error()))
	case p.info == nil:
		s.WriteString(styles.Unselected.Render("Loading…"))
	default:
		row := func(label, value string) {
			if value == "" {
				return
			}
			s.WriteString(fmt.Sprintf("%s %s\n", styles.Label.Render(label+":"), value))
		}
		row("Name", p.info.Name)
		row("Size", p.info.HumanSize())
		row("Pixels", p.info.Dimensions())
		row("Type", p.info.ContentType)
		row("Modified", p.info.HumanModTime())

		keys := make([]string, 0, len(p.info.Metadata))
		for k := range p.info.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			row(k, p.info.Metadata[k])
		}
	}

	return styles.PanelStyle.Width(p.width).Height(p.height).Render(strings.TrimRight(s.String(), "\n"))
}
