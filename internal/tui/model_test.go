package tui

import (
	"path/filepath"
	"testing"
	"time"

	"aspect/internal/catalog"
	"aspect/internal/data"
	"aspect/internal/persist"
	"aspect/internal/tui/messages"
	"aspect/pkg/testutils"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestModel builds a viewer over a directory of a.png, b.png and c.png.
func newTestModel(t *testing.T, opts ...catalog.Option) (*Model, string) {
	t.Helper()
	dir := t.TempDir()
	testutils.WritePNG(t, filepath.Join(dir, "a.png"), 2, 2)
	testutils.WritePNG(t, filepath.Join(dir, "b.png"), 4, 2)
	testutils.WritePNG(t, filepath.Join(dir, "c.png"), 2, 4)

	cat, err := catalog.FromDir(dir, opts...)
	require.NoError(t, err)

	m, err := New(cat, Options{})
	require.NoError(t, err)
	t.Cleanup(m.Close)

	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, dir
}

func frame(m *Model) tea.Cmd {
	_, cmd := m.Update(messages.TickMsg{Seq: m.seq})
	return cmd
}

// settle runs frames until no decode is in flight and the bus is empty.
func settle(t *testing.T, m *Model) {
	t.Helper()
	require.Eventually(t, func() bool {
		frame(m)
		return !m.pipeline.Busy() && m.bus.Pending() == 0
	}, 2*time.Second, 5*time.Millisecond)
}

func press(m *Model, s string) tea.Cmd {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	switch s {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func sourceName(t *testing.T, m *Model) string {
	t.Helper()
	f, ok := m.pipeline.Source()
	require.True(t, ok, "no image loaded")
	return f.Name()
}

func TestNewRequiresCatalog(t *testing.T) {
	_, err := New(nil, Options{})
	assert.Error(t, err)
}

func TestModelLoadsFirstImage(t *testing.T) {
	m, _ := newTestModel(t, catalog.WithoutPersistence())
	require.NotNil(t, m.Init())

	settle(t, m)
	assert.Equal(t, "a.png", sourceName(t, m))

	view := testutils.StripANSI(m.View())
	assert.Contains(t, view, "1/3")
	assert.Contains(t, view, "a.png")
	assert.Contains(t, view, halfBlock)
}

func TestModelNavigation(t *testing.T) {
	m, _ := newTestModel(t, catalog.WithoutPersistence())
	settle(t, m)

	require.NotNil(t, press(m, "l"))
	settle(t, m)
	assert.Equal(t, "b.png", sourceName(t, m))

	press(m, "h")
	press(m, "h")
	settle(t, m)
	assert.Equal(t, "c.png", sourceName(t, m))

	press(m, "g")
	settle(t, m)
	assert.Equal(t, "a.png", sourceName(t, m))

	press(m, "G")
	settle(t, m)
	assert.Equal(t, "c.png", sourceName(t, m))
	assert.Contains(t, testutils.StripANSI(m.View()), "3/3")
}

func TestModelStaleTickIgnored(t *testing.T) {
	m, _ := newTestModel(t, catalog.WithoutPersistence())
	_, cmd := m.Update(messages.TickMsg{Seq: m.seq - 1})
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.bus.Pending(), "initial load still queued")
}

func TestModelRatingIsPersisted(t *testing.T) {
	m, dir := newTestModel(t)
	settle(t, m)
	require.True(t, m.catalog.HasPersistence())

	press(m, "4")
	settle(t, m)

	f, ok := m.catalog.Current()
	require.True(t, ok)
	v, set := f.Rating.Value()
	require.True(t, set)
	assert.Equal(t, 4, v)
	assert.Contains(t, testutils.StripANSI(m.View()), "★★★★☆")

	m.Close()

	store, err := persist.OpenDir(dir)
	require.NoError(t, err)
	defer store.Close()
	r, err := store.Get("a.png")
	require.NoError(t, err)
	assert.Equal(t, data.NewRating(4), r)
}

func TestModelFilterInput(t *testing.T) {
	m, _ := newTestModel(t, catalog.WithoutPersistence())
	settle(t, m)

	press(m, "/")
	assert.True(t, m.filtering)
	press(m, "b")
	settle(t, m)
	assert.Equal(t, 1, m.catalog.Len())
	assert.Equal(t, "b.png", sourceName(t, m))

	press(m, "enter")
	assert.False(t, m.filtering)
	assert.Equal(t, "b", m.catalog.Filter().Name())

	press(m, "/")
	press(m, "esc")
	settle(t, m)
	assert.False(t, m.filtering)
	assert.Equal(t, 3, m.catalog.Len())
	assert.Equal(t, "b.png", sourceName(t, m), "selection follows its file")
}

func TestModelRatingFloorCycle(t *testing.T) {
	assert.Equal(t, data.NewRating(1), nextFloor(data.NoRating))
	assert.Equal(t, data.NewRating(3), nextFloor(data.NewRating(2)))
	assert.Equal(t, data.NoRating, nextFloor(data.NewRating(5)))

	m, _ := newTestModel(t, catalog.WithoutPersistence())
	settle(t, m)
	press(m, "f")
	settle(t, m)
	assert.Equal(t, data.NewRating(1), m.catalog.Filter().MinRating())
	assert.Equal(t, 0, m.catalog.Len(), "nothing is rated")
	assert.Contains(t, testutils.StripANSI(m.View()), "No images")
}

func TestModelSortAndSlideshow(t *testing.T) {
	m, _ := newTestModel(t, catalog.WithoutPersistence())
	settle(t, m)

	press(m, "s")
	frame(m)
	assert.Equal(t, data.SortByLastModified, m.catalog.Sort())

	press(m, "S")
	frame(m)
	assert.True(t, m.catalog.IsSlideshowEnabled())
	assert.Equal(t, 5*time.Second, m.catalog.SlideshowInterval())
	assert.LessOrEqual(t, m.nextDelay(), idleInterval)

	press(m, "S")
	frame(m)
	assert.False(t, m.catalog.IsSlideshowEnabled())
}

func TestModelChangeQueuesOneRescan(t *testing.T) {
	m, dir := newTestModel(t, catalog.WithoutPersistence())
	settle(t, m)

	testutils.WritePNG(t, filepath.Join(dir, "d.png"), 2, 2)
	m.Update(messages.ChangeMsg{})
	m.Update(messages.ChangeMsg{})
	assert.Equal(t, 1, m.bus.Pending())

	settle(t, m)
	assert.False(t, m.rescanQueued)
	assert.Equal(t, 4, m.catalog.Len())
	assert.Equal(t, "a.png", sourceName(t, m))
}

func TestModelInfoPanel(t *testing.T) {
	m, _ := newTestModel(t, catalog.WithoutPersistence())
	settle(t, m)

	cmd := press(m, "i")
	require.NotNil(t, cmd)
	msg, ok := cmd().(messages.InfoMsg)
	require.True(t, ok)
	require.NoError(t, msg.Err)
	assert.Equal(t, "a.png", msg.Info.Name)

	m.Update(msg)
	view := testutils.StripANSI(m.View())
	assert.Contains(t, view, "Details")
	assert.Contains(t, view, "2x2")
}

func TestModelQuitClosesEverything(t *testing.T) {
	m, _ := newTestModel(t, catalog.WithoutPersistence())
	settle(t, m)

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, m.closed)
	assert.Equal(t, 0, m.textures.Len())
	assert.Nil(t, frame(m))
}
