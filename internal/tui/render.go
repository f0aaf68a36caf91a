package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"aspect/internal/event"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/image/draw"
)

const halfBlock = "▀"

// fitSize scales w x h to fit inside maxW x maxH keeping the aspect ratio.
func fitSize(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return 0, 0
	}
	outW, outH := maxW, h*maxW/w
	if outH > maxH {
		outW, outH = w*maxH/h, maxH
	}
	return max(outW, 1), max(outH, 1)
}

// renderHalfBlocks draws img into at most cols x rows terminal cells. Each
// cell shows two vertically stacked pixels: the upper one as the glyph
// colour, the lower one as the background.
func renderHalfBlocks(img *image.RGBA, cols, rows int) string {
	b := img.Bounds()
	w, h := fitSize(b.Dx(), b.Dy(), cols, rows*2)
	if w == 0 {
		return ""
	}

	scaled := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, b, draw.Src, nil)

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := 0; x < w; x++ {
			top := scaled.RGBAAt(x, y)
			bottom := color.RGBA{}
			if y+1 < h {
				bottom = scaled.RGBAAt(x, y+1)
			}
			sb.WriteString(lipgloss.NewStyle().
				Foreground(hexColor(top)).
				Background(hexColor(bottom)).
				Render(halfBlock))
		}
	}
	return sb.String()
}

// hexColor drops alpha; premultiplied pixels are already composited on black.
func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}

type renderKey struct {
	handle     event.Handle
	cols, rows int
}

// renderCache keeps the rendered text of each frame at the current size.
type renderCache map[renderKey]string

func (c renderCache) get(k renderKey, render func() string) string {
	if s, ok := c[k]; ok {
		return s
	}
	s := render()
	c[k] = s
	return s
}

func (c renderCache) reset() {
	for k := range c {
		delete(c, k)
	}
}
