package testutils

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWritePNG(t *testing.T) {
	path := WritePNG(t, filepath.Join(t.TempDir(), "a.png"), 3, 2)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Width)
	assert.Equal(t, 2, cfg.Height)
}

func TestCreateFiles(t *testing.T) {
	dir := t.TempDir()
	CreateImages(t, dir, "a.png", "b.png")
	CreateTestFilesWithContent(t, dir, map[string]string{"notes.txt": "hi"})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestStripANSI(t *testing.T) {
	assert.Equal(t, "red plain", StripANSI("\x1b[38;2;255;0;0mred\x1b[0m plain"))
	assert.Equal(t, "", StripANSI("\x1b[?25l"))
}
