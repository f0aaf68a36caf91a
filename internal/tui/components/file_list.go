package components

import (
	"fmt"
	"strings"

	"aspect/internal/data"
	"aspect/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// FileList renders a window of the catalog around the selection.
type FileList struct {
	files  []data.File
	cursor int
	width  int
	height int
}

func NewFileList() *FileList {
	return &FileList{}
}

func (fl *FileList) SetFiles(files []data.File, cursor int) {
	fl.files = files
	fl.cursor = cursor
}

func (fl *FileList) SetSize(width, height int) {
	fl.width, fl.height = width, height
}

// window returns the index range shown, keeping the cursor centred where
// possible.
func (fl *FileList) window() (int, int) {
	rows := max(fl.height, 1)
	if len(fl.files) <= rows {
		return 0, len(fl.files)
	}
	start := fl.cursor - rows/2
	start = max(0, min(start, len(fl.files)-rows))
	return start, start + rows
}

func (fl *FileList) View() string {
	var s strings.Builder

	if len(fl.files) == 0 {
		s.WriteString(styles.Unselected.Render("No images"))
		return fl.frame(s.String())
	}

	start, end := fl.window()
	for i := start; i < end; i++ {
		file := fl.files[i]
		style := styles.Unselected
		cursor := " "
		if i == fl.cursor {
			style = styles.Selected
			cursor = ">"
		}

		stars := ""
		if file.Rating.IsSet() {
			stars = " " + styles.Rating.Render(file.Rating.Stars())
		}

		nameWidth := max(fl.width-lipgloss.Width(stars)-2, 4)
		name := truncate(file.Name(), nameWidth)
		s.WriteString(fmt.Sprintf("%s %s%s", cursor, style.Render(name), stars))
		if i < end-1 {
			s.WriteByte('\n')
		}
	}

	return fl.frame(s.String())
}

func (fl *FileList) frame(content string) string {
	return styles.PanelStyle.Width(fl.width).Height(fl.height).Render(content)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}
