// Package testutils holds fixtures shared by the package tests.
package testutils

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

// WritePNG writes a w x h gradient PNG to path and returns path.
func WritePNG(t *testing.T, path string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 40), G: uint8(y * 40), B: 200, A: 255})
		}
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

// CreateImages writes a small valid PNG for each name inside dir.
func CreateImages(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		WritePNG(t, filepath.Join(dir, name), 2, 2)
	}
}

// CreateTestFilesWithContent creates files with specific content. Names
// with an image extension still get the given bytes, which makes them
// undecodable.
func CreateTestFilesWithContent(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644)
		require.NoError(t, err)
	}
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]`)

// StripANSI removes terminal escape sequences from a rendered view.
func StripANSI(s string) string {
	return ansi.ReplaceAllString(s, "")
}
