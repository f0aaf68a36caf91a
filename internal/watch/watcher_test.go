package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitFor reads changes until one matches or the timeout passes.
func waitFor(t *testing.T, ch <-chan Change, match func(Change) bool) Change {
	t.Helper()
	timeout := time.After(3 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			require.True(t, ok, "Change channel closed unexpectedly")
			t.Logf("Received change: %+v", c)
			if match(c) {
				return c
			}
		case <-timeout:
			t.Fatal("Timeout waiting for change")
		}
	}
}

func TestWatcherReportsImageChanges(t *testing.T) {
	tempDir := t.TempDir()

	w, err := New()
	require.NoError(t, err, "New watcher creation failed")
	require.NoError(t, w.AddDirectory(tempDir), "Failed to add directory to watcher")
	require.NoError(t, w.Start(), "Failed to start watcher")
	defer w.Stop()

	assert.True(t, w.IsRunning())
	assert.Equal(t, []string{tempDir}, w.GetDirectories())
	assert.Error(t, w.Start(), "second start fails")

	// Allow a brief moment for fsnotify to initialize watches
	time.Sleep(100 * time.Millisecond)

	// Non-image files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "notes.txt"), []byte("x"), 0644))

	imgPath := filepath.Join(tempDir, "new.PNG")
	require.NoError(t, os.WriteFile(imgPath, []byte("x"), 0644))

	c := waitFor(t, w.Changes(), func(c Change) bool { return c.Op.Has(fsnotify.Create) })
	assert.Equal(t, imgPath, c.Path)
	assert.False(t, c.Removed())

	require.NoError(t, os.Remove(imgPath))
	c = waitFor(t, w.Changes(), func(c Change) bool { return c.Removed() })
	assert.Equal(t, imgPath, c.Path)
}

func TestWatcherStopClosesChannel(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	require.NoError(t, w.AddDirectory(t.TempDir()))
	require.NoError(t, w.Start())

	w.Stop()
	assert.False(t, w.IsRunning())
	w.Stop() // no-op

	Drain(w.Changes())
	select {
	case _, ok := <-w.Changes():
		assert.False(t, ok, "Change channel should be closed after stop")
	case <-time.After(time.Second):
		t.Error("Timeout waiting for change channel to close after stop")
	}
}

func TestAddDirectoryErrors(t *testing.T) {
	w, err := New()
	require.NoError(t, err)
	defer w.Stop()

	assert.Error(t, w.AddDirectory(filepath.Join(t.TempDir(), "missing")))

	file := filepath.Join(t.TempDir(), "a.png")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, w.AddDirectory(file))
}

func TestStopBeforeStart(t *testing.T) {
	w, err := New()
	require.NoError(t, err)

	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
	assert.Error(t, w.Start(), "a stopped watcher cannot start")
}

func TestDrain(t *testing.T) {
	ch := make(chan Change, 4)
	assert.False(t, Drain(ch))

	ch <- Change{Path: "a.png"}
	ch <- Change{Path: "b.png"}
	assert.True(t, Drain(ch))
	assert.Empty(t, ch)

	close(ch)
	assert.False(t, Drain(ch))
}
