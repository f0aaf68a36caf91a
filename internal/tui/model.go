package tui

import (
	"fmt"
	"strconv"
	"time"

	"aspect/internal/catalog"
	"aspect/internal/data"
	"aspect/internal/event"
	"aspect/internal/log"
	"aspect/internal/metadata"
	"aspect/internal/pipeline"
	"aspect/internal/tui/components"
	"aspect/internal/tui/messages"
	"aspect/internal/tui/styles"
	"aspect/internal/tui/views"
	"aspect/internal/watch"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	// pollInterval is used while a decode runs or events wait on the bus.
	pollInterval = 15 * time.Millisecond
	// idleInterval bounds the sleep when nothing is scheduled.
	idleInterval = 250 * time.Millisecond
	sidebarWidth = 34
)

// Options configure the viewer.
type Options struct {
	SlideshowInterval time.Duration
	Watch             bool
	// TextureBudget caps the bytes of decoded frames held at once. 0 means
	// no limit.
	TextureBudget int
}

// Model hosts the frame loop: every tick rotates the bus, then lets the
// pipeline and the catalog consume the current generation.
type Model struct {
	bus      *event.Bus
	catalog  *catalog.Catalog
	pipeline *pipeline.Pipeline
	textures *pipeline.Textures
	watcher  *watch.Watcher
	opts     Options

	keys      keyMap
	help      help.Model
	filter    textinput.Model
	filtering bool

	statusBar *components.StatusBar
	fileList  *components.FileList
	infoPanel *components.InfoPanel

	width, height int
	seq           int
	rescanQueued  bool
	showList      bool
	showInfo      bool
	infoPath      string
	cache         renderCache
	closed        bool
}

// New creates a viewer over cat. The model owns cat from now on and closes
// it in Close.
func New(cat *catalog.Catalog, opts Options) (*Model, error) {
	if cat == nil {
		return nil, fmt.Errorf("catalog is required")
	}
	if opts.SlideshowInterval <= 0 {
		opts.SlideshowInterval = 5 * time.Second
	}

	textures := pipeline.NewTextures(opts.TextureBudget)
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "name"
	ti.CharLimit = 128

	m := &Model{
		bus:       event.NewBus(),
		catalog:   cat,
		pipeline:  pipeline.New(textures),
		textures:  textures,
		opts:      opts,
		keys:      newKeyMap(),
		help:      help.New(),
		filter:    ti,
		statusBar: components.NewStatusBar(),
		fileList:  components.NewFileList(),
		infoPanel: components.NewInfoPanel(),
		cache:     renderCache{},
	}

	if opts.Watch && cat.Dir() != "" {
		if err := m.startWatcher(cat.Dir()); err != nil {
			log.LogWithError(err).With(log.F("dir", cat.Dir())).Warn("Directory watching disabled")
		}
	}

	cat.EmitCurrent(m.bus)
	return m, nil
}

func (m *Model) startWatcher(dir string) error {
	w, err := watch.New()
	if err != nil {
		return err
	}
	if err := w.AddDirectory(dir); err != nil {
		w.Stop()
		return err
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return err
	}
	m.watcher = w
	return nil
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tickNow(), m.waitForChange())
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.TickMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		return m, m.frame()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.cache.reset()
		return m, nil

	case messages.ChangeMsg:
		if m.watcher != nil {
			watch.Drain(m.watcher.Changes())
		}
		if !m.rescanQueued {
			m.rescanQueued = true
			m.bus.Push(event.Rescan{})
		}
		return m, tea.Batch(m.tickNow(), m.waitForChange())

	case messages.InfoMsg:
		if msg.Path == m.infoPath {
			m.infoPanel.SetInfo(msg.Info, msg.Err)
		}
		return m, nil
	}

	return m, m.statusBar.Update(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Close()
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.bus.Push(event.NavNext{})
	case key.Matches(msg, m.keys.Prev):
		m.bus.Push(event.NavPrev{})
	case key.Matches(msg, m.keys.First):
		m.bus.Push(event.NavGoTo{Index: 0})
	case key.Matches(msg, m.keys.Last):
		m.bus.Push(event.NavGoTo{Index: -1})
	case key.Matches(msg, m.keys.Sort):
		m.bus.Push(event.SortBy{Method: m.catalog.Sort().Next()})
	case key.Matches(msg, m.keys.RatingFloor):
		m.bus.Push(event.FilterRating{Rating: nextFloor(m.catalog.Filter().MinRating())})
	case key.Matches(msg, m.keys.Rate):
		n, _ := strconv.Atoi(msg.String())
		m.bus.Push(event.SetRating{Rating: data.NewRating(n)})
	case key.Matches(msg, m.keys.ClearRating):
		m.bus.Push(event.SetRating{Rating: data.NoRating})
	case key.Matches(msg, m.keys.Slideshow):
		if m.catalog.IsSlideshowEnabled() {
			m.bus.Push(event.SlideshowStop{})
		} else {
			m.bus.Push(event.SlideshowStart{Interval: m.opts.SlideshowInterval})
		}
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		m.filter.SetValue(m.catalog.Filter().Name())
		m.filter.CursorEnd()
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.List):
		m.showList = !m.showList
		return m, nil
	case key.Matches(msg, m.keys.Info):
		m.showInfo = !m.showInfo
		if m.showInfo {
			return m, m.loadInfo()
		}
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	default:
		return m, nil
	}

	return m, m.tickNow()
}

// handleFilterKey edits the name filter. Every edit is applied as it is
// typed; esc clears the filter.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.bus.Push(event.FilterText{Text: ""})
		return m, m.tickNow()
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.bus.Push(event.FilterText{Text: m.filter.Value()})
		return m, tea.Batch(cmd, m.tickNow())
	}
	return m, cmd
}

// nextFloor cycles the minimum rating: none, 1 .. 5, none.
func nextFloor(r data.Rating) data.Rating {
	v, ok := r.Value()
	if !ok {
		return data.NewRating(1)
	}
	if v >= 5 {
		return data.NoRating
	}
	return data.NewRating(v + 1)
}

// frame runs one iteration of the loop and schedules the next one.
func (m *Model) frame() tea.Cmd {
	if m.closed {
		return nil
	}

	m.bus.Rotate()

	var cmds []tea.Cmd
	for _, e := range m.bus.Events() {
		log.Debugf("Event %s", event.Name(e))
		switch ev := e.(type) {
		case event.ImageLoaded:
			m.cache.reset()
			m.infoPath = ev.Source.Path
			m.infoPanel.SetInfo(nil, nil)
			if m.showInfo {
				cmds = append(cmds, m.loadInfo())
			}
		case event.Rescan:
			m.rescanQueued = false
		}
	}

	m.pipeline.Update(m.bus)
	m.catalog.Update(m.bus)

	cmds = append(cmds, m.statusBar.SetLoading(m.pipeline.Busy()))
	cmds = append(cmds, m.tickAfter(m.nextDelay()))
	return tea.Batch(cmds...)
}

// nextDelay returns how long the loop may sleep before the next frame.
func (m *Model) nextDelay() time.Duration {
	if m.bus.Pending() > 0 || m.pipeline.Busy() {
		return pollInterval
	}
	d := idleInterval
	if t, ok := m.pipeline.TimeToNextUpdate(); ok && t < d {
		d = t
	}
	if t, ok := m.catalog.TimeToNextSlide(); ok && t < d {
		d = t
	}
	return d
}

// tickNow invalidates scheduled ticks and runs a frame right away.
func (m *Model) tickNow() tea.Cmd {
	m.seq++
	seq := m.seq
	return func() tea.Msg { return messages.TickMsg{Seq: seq} }
}

func (m *Model) tickAfter(d time.Duration) tea.Cmd {
	m.seq++
	seq := m.seq
	return tea.Tick(d, func(time.Time) tea.Msg { return messages.TickMsg{Seq: seq} })
}

func (m *Model) waitForChange() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	ch := m.watcher.Changes()
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return messages.ChangeMsg{}
	}
}

func (m *Model) loadInfo() tea.Cmd {
	path := m.infoPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		info, err := metadata.Analyze(path)
		return messages.InfoMsg{Path: path, Info: info, Err: err}
	}
}

// Close stops watching, abandons any decode and closes the catalog.
func (m *Model) Close() {
	if m.closed {
		return
	}
	m.closed = true
	if m.watcher != nil {
		m.watcher.Stop()
	}
	m.pipeline.Close()
	if err := m.catalog.Close(); err != nil {
		log.LogWithError(err).Warn("Failed to close catalog")
	}
}

// View implements tea.Model
func (m *Model) View() string {
	return views.RenderMainView(m)
}

// Size implements views.ViewModel.
func (m *Model) Size() (int, int) { return m.width, m.height }

// Image renders the frame on screen into at most cols x rows cells.
func (m *Model) Image(cols, rows int) string {
	if m.catalog.Len() == 0 {
		return styles.Unselected.Render("No images")
	}
	f, ok := m.pipeline.Current()
	if !ok {
		return ""
	}
	img, ok := m.textures.Get(f.Handle)
	if !ok {
		return ""
	}
	return m.cache.get(renderKey{handle: f.Handle, cols: cols, rows: rows}, func() string {
		return renderHalfBlocks(img, cols, rows)
	})
}

// Sidebar returns the side panels, "" when none is shown.
func (m *Model) Sidebar(rows int) string {
	if !m.showList && !m.showInfo {
		return ""
	}
	panels := 0
	if m.showList {
		panels++
	}
	if m.showInfo {
		panels++
	}
	// Two lines per panel border.
	h := max(rows/panels-2, 1)

	var out []string
	if m.showList {
		m.fileList.SetSize(sidebarWidth, h)
		m.fileList.SetFiles(m.catalog.Files(), m.catalog.CurrentIndex())
		out = append(out, m.fileList.View())
	}
	if m.showInfo {
		m.infoPanel.SetSize(sidebarWidth, h)
		out = append(out, m.infoPanel.View())
	}
	return views.Stack(out...)
}

// StatusLine describes the selection and the catalog state.
func (m *Model) StatusLine() string {
	if m.filtering {
		return m.filter.View()
	}

	var parts []string
	if f, ok := m.catalog.Current(); ok {
		parts = append(parts,
			fmt.Sprintf("%d/%d", m.catalog.CurrentIndex()+1, m.catalog.Len()),
			f.Name(),
		)
		if f.Rating.IsSet() {
			parts = append(parts, styles.Rating.Render(f.Rating.Stars()))
		}
		if frames := m.pipeline.Frames(); len(frames) > 1 {
			parts = append(parts, fmt.Sprintf("frame %d/%d", m.pipeline.FrameIndex()+1, len(frames)))
		}
	} else {
		parts = append(parts, fmt.Sprintf("0/%d", m.catalog.Total()))
	}

	parts = append(parts, "sort: "+m.catalog.Sort().String())
	if !m.catalog.Filter().IsEmpty() {
		parts = append(parts, "filter: "+m.catalog.Filter().String())
	}
	if m.catalog.IsSlideshowEnabled() {
		parts = append(parts, "slideshow "+m.catalog.SlideshowInterval().String())
	}
	if !m.catalog.HasPersistence() {
		parts = append(parts, "ratings not saved")
	}

	m.statusBar.SetParts(parts...)
	return m.statusBar.View()
}

// HelpView renders the key bindings.
func (m *Model) HelpView() string {
	return m.help.View(m.keys)
}

// SidebarWidth implements views.ViewModel.
func (m *Model) SidebarWidth() int { return sidebarWidth + 4 }

// Run starts the viewer on the alternate screen and blocks until it quits.
func Run(cat *catalog.Catalog, opts Options) error {
	m, err := New(cat, opts)
	if err != nil {
		return err
	}
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err = p.Run()
	return err
}
