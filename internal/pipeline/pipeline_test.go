package pipeline

import (
	"context"
	"fmt"
	"image"
	"sync"
	"testing"
	"time"

	"aspect/internal/data"
	"aspect/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes one frame: the given events become current, the pipeline
// updates, and whatever it pushed is returned.
func run(p *Pipeline, bus *event.Bus, events ...event.Event) []event.Event {
	bus.PushAll(events)
	bus.Rotate()
	p.Update(bus)
	bus.Rotate()
	return bus.Events()
}

// settle runs frames until no decode is in flight.
func settle(t *testing.T, p *Pipeline, bus *event.Bus) []event.Event {
	t.Helper()
	var seen []event.Event
	require.Eventually(t, func() bool {
		seen = append(seen, run(p, bus)...)
		return !p.Busy()
	}, 2*time.Second, 2*time.Millisecond)
	return seen
}

func loaded(events []event.Event) []event.ImageLoaded {
	var out []event.ImageLoaded
	for _, e := range events {
		if l, ok := e.(event.ImageLoaded); ok {
			out = append(out, l)
		}
	}
	return out
}

func solid(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

// fakeDecoder returns canned frames per path, optionally waiting on a gate.
type fakeDecoder struct {
	mu     sync.Mutex
	frames map[string][]DecodedFrame
	errs   map[string]error
	gates  map[string]chan struct{}
	calls  []string
}

func newFakeDecoder() *fakeDecoder {
	return &fakeDecoder{
		frames: make(map[string][]DecodedFrame),
		errs:   make(map[string]error),
		gates:  make(map[string]chan struct{}),
	}
}

func (f *fakeDecoder) decode(ctx context.Context, path string) ([]DecodedFrame, error) {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	gate := f.gates[path]
	frames, err := f.frames[path], f.errs[path]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return frames, err
}

func (f *fakeDecoder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// failingTextures rejects the registrations listed in fail (1-based).
type failingTextures struct {
	*Textures
	n    int
	fail map[int]bool
}

func (f *failingTextures) Register(img *image.RGBA) (event.Handle, error) {
	f.n++
	if f.fail[f.n] {
		return 0, fmt.Errorf("registration %d rejected", f.n)
	}
	return f.Textures.Register(img)
}

func TestLoadEmitsImageLoaded(t *testing.T) {
	dec := newFakeDecoder()
	dec.frames["/img/a.png"] = []DecodedFrame{{Image: solid(4, 3)}}
	textures := NewTextures(0)
	p := New(textures, WithDecoder(dec.decode))
	bus := event.NewBus()

	file := data.NewFile("/img/a.png")
	seen := run(p, bus, event.Load{File: file})
	seen = append(seen, settle(t, p, bus)...)

	events := loaded(seen)
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Width)
	assert.Equal(t, 3, events[0].Height)
	assert.Equal(t, file, events[0].Source)

	cur, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, events[0].Handle, cur.Handle)
	src, ok := p.Source()
	require.True(t, ok)
	assert.Equal(t, "/img/a.png", src.Path)

	_, ok = p.TimeToNextUpdate()
	assert.False(t, ok, "static images never advance")
}

func TestLatestLoadWins(t *testing.T) {
	dec := newFakeDecoder()
	a, b := "/img/a.png", "/img/b.png"
	dec.frames[a] = []DecodedFrame{{Image: solid(1, 1)}}
	dec.frames[b] = []DecodedFrame{{Image: solid(2, 2)}}
	gateA, gateB := make(chan struct{}), make(chan struct{})
	dec.gates[a], dec.gates[b] = gateA, gateB

	textures := NewTextures(0)
	p := New(textures, WithDecoder(dec.decode))
	bus := event.NewBus()

	seen := run(p, bus, event.Load{File: data.NewFile(a)})
	assert.True(t, p.Busy())
	seen = append(seen, run(p, bus, event.Load{File: data.NewFile(b)})...)

	close(gateB)
	seen = append(seen, settle(t, p, bus)...)

	// A finishing late changes nothing.
	close(gateA)
	time.Sleep(20 * time.Millisecond)
	for i := 0; i < 5; i++ {
		seen = append(seen, run(p, bus)...)
	}

	events := loaded(seen)
	require.Len(t, events, 1)
	assert.Equal(t, b, events[0].Source.Path)
	assert.Equal(t, 1, textures.Len())
}

func TestSamePathLoadIsIdempotent(t *testing.T) {
	dec := newFakeDecoder()
	a := "/img/a.png"
	dec.frames[a] = []DecodedFrame{{Image: solid(1, 1)}}
	gate := make(chan struct{})
	dec.gates[a] = gate

	p := New(NewTextures(0), WithDecoder(dec.decode))
	bus := event.NewBus()

	run(p, bus, event.Load{File: data.NewFile(a)})
	run(p, bus, event.Load{File: data.NewFile(a)}, event.Load{File: data.NewFile(a)})
	close(gate)
	seen := settle(t, p, bus)

	assert.Len(t, loaded(seen), 1)
	assert.Equal(t, 1, dec.callCount())
}

func TestSwapReleasesPreviousTextures(t *testing.T) {
	dec := newFakeDecoder()
	dec.frames["/a.gif"] = []DecodedFrame{
		{Image: solid(2, 2), Delay: 50 * time.Millisecond},
		{Image: solid(2, 2), Delay: 50 * time.Millisecond},
		{Image: solid(2, 2), Delay: 50 * time.Millisecond},
	}
	dec.frames["/b.png"] = []DecodedFrame{{Image: solid(3, 3)}}

	textures := NewTextures(0)
	p := New(textures, WithDecoder(dec.decode))
	bus := event.NewBus()

	run(p, bus, event.Load{File: data.NewFile("/a.gif")})
	settle(t, p, bus)
	assert.Equal(t, 3, textures.Len())
	assert.Len(t, p.Frames(), 3)

	run(p, bus, event.Load{File: data.NewFile("/b.png")})
	settle(t, p, bus)
	assert.Equal(t, 1, textures.Len())
	assert.Len(t, p.Frames(), 1)

	p.Close()
	assert.Equal(t, 0, textures.Len())
}

func TestDecodeFailureKeepsPreviousImage(t *testing.T) {
	dec := newFakeDecoder()
	dec.frames["/good.png"] = []DecodedFrame{{Image: solid(2, 2)}}
	dec.errs["/bad.png"] = fmt.Errorf("corrupt")

	textures := NewTextures(0)
	p := New(textures, WithDecoder(dec.decode))
	bus := event.NewBus()

	run(p, bus, event.Load{File: data.NewFile("/good.png")})
	settle(t, p, bus)

	seen := run(p, bus, event.Load{File: data.NewFile("/bad.png")})
	seen = append(seen, settle(t, p, bus)...)

	assert.Empty(t, loaded(seen))
	src, ok := p.Source()
	require.True(t, ok)
	assert.Equal(t, "/good.png", src.Path)
	assert.Equal(t, 1, textures.Len())
}

func TestRegistrationFailureSkipsFrame(t *testing.T) {
	dec := newFakeDecoder()
	dec.frames["/anim.gif"] = []DecodedFrame{
		{Image: solid(2, 2), Delay: 10 * time.Millisecond},
		{Image: solid(2, 2), Delay: 20 * time.Millisecond},
		{Image: solid(2, 2), Delay: 30 * time.Millisecond},
	}
	textures := &failingTextures{Textures: NewTextures(0), fail: map[int]bool{1: true}}
	p := New(textures, WithDecoder(dec.decode))
	bus := event.NewBus()

	seen := run(p, bus, event.Load{File: data.NewFile("/anim.gif")})
	seen = append(seen, settle(t, p, bus)...)

	require.Len(t, loaded(seen), 1)
	frames := p.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, 20*time.Millisecond, frames[0].Delay)
}

func TestAllRegistrationsFailing(t *testing.T) {
	dec := newFakeDecoder()
	dec.frames["/a.png"] = []DecodedFrame{{Image: solid(2, 2)}}
	textures := &failingTextures{Textures: NewTextures(0), fail: map[int]bool{1: true}}
	p := New(textures, WithDecoder(dec.decode))
	bus := event.NewBus()

	seen := run(p, bus, event.Load{File: data.NewFile("/a.png")})
	seen = append(seen, settle(t, p, bus)...)
	assert.Empty(t, loaded(seen))
	_, ok := p.Current()
	assert.False(t, ok)
}

func TestAnimationClock(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dec := newFakeDecoder()
	dec.frames["/anim.gif"] = []DecodedFrame{
		{Image: solid(2, 2), Delay: 100 * time.Millisecond},
		{Image: solid(2, 2), Delay: 200 * time.Millisecond},
	}
	p := New(NewTextures(0), WithDecoder(dec.decode), WithClock(func() time.Time { return now }))
	bus := event.NewBus()

	run(p, bus, event.Load{File: data.NewFile("/anim.gif")})
	settle(t, p, bus)
	frames := p.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, 0, p.FrameIndex())

	remaining, ok := p.TimeToNextUpdate()
	require.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, remaining)

	now = now.Add(50 * time.Millisecond)
	assert.Empty(t, run(p, bus))
	remaining, _ = p.TimeToNextUpdate()
	assert.Equal(t, 50*time.Millisecond, remaining)

	now = now.Add(50 * time.Millisecond)
	assert.Equal(t, []event.Event{event.FrameSwapped{Handle: frames[1].Handle}}, run(p, bus))
	assert.Equal(t, 1, p.FrameIndex())

	now = now.Add(150 * time.Millisecond)
	assert.Empty(t, run(p, bus))

	// Overdue reports zero.
	now = now.Add(time.Second)
	remaining, ok = p.TimeToNextUpdate()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), remaining)

	assert.Equal(t, []event.Event{event.FrameSwapped{Handle: frames[0].Handle}}, run(p, bus))
	assert.Equal(t, 0, p.FrameIndex())
}

func TestTexturesLimit(t *testing.T) {
	textures := NewTextures(2 * 2 * 4)
	h, err := textures.Register(solid(2, 2))
	require.NoError(t, err)

	_, err = textures.Register(solid(1, 1))
	assert.Error(t, err, "over the byte limit")

	textures.Unregister(h)
	_, err = textures.Register(solid(1, 1))
	assert.NoError(t, err)

	_, err = textures.Register(solid(0, 0))
	assert.Error(t, err)
}
