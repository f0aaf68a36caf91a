// Package pipeline loads images in the background, registers their frames
// as textures and drives animation timing.
package pipeline

import (
	"time"

	"aspect/internal/data"
	"aspect/internal/errors"
	"aspect/internal/event"
	"aspect/internal/log"
)

// Frame is one registered frame of the displayed image.
type Frame struct {
	Handle event.Handle
	Width  int
	Height int
	Delay  time.Duration
}

// Pipeline is owned by the frame loop and is not safe for concurrent use.
type Pipeline struct {
	textures TextureRegistry
	decode   Decoder
	now      func() time.Time

	job *job

	source    data.File
	hasSource bool
	frames    []Frame
	index     int
	last      time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDecoder replaces DecodeFile.
func WithDecoder(d Decoder) Option {
	return func(p *Pipeline) { p.decode = d }
}

// WithClock replaces time.Now for the animation clock.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New returns a pipeline that registers frames with textures.
func New(textures TextureRegistry, opts ...Option) *Pipeline {
	p := &Pipeline{
		textures: textures,
		decode:   DecodeFile,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.last = p.now()
	return p
}

// Update starts decodes for this frame's Load events, publishes a finished
// decode as ImageLoaded and advances animations, pushing FrameSwapped.
func (p *Pipeline) Update(bus *event.Bus) {
	for _, e := range bus.Events() {
		if ev, ok := e.(event.Load); ok {
			p.load(ev.File)
		}
	}

	p.pollJob(bus)
	p.animate(bus)
}

func (p *Pipeline) load(file data.File) {
	if p.job != nil {
		if p.job.file.Path == file.Path {
			return
		}
		p.job.abandon()
		p.job = nil
	}

	log.LogWithFields(log.F("path", file.Path)).Info("Loading image")
	p.job = startJob(file, p.decode)
}

func (p *Pipeline) pollJob(bus *event.Bus) {
	if p.job == nil {
		return
	}
	decoded, done, err := p.job.poll()
	if !done {
		return
	}
	j := p.job
	p.job = nil

	if err != nil {
		log.LogWithError(err).With(log.F("job", j.id.String())).Error("Failed to load image")
		return
	}
	if len(decoded) == 0 {
		log.LogWithError(errors.NewDecodeError("image contained no frames", j.file.Path, errors.NoFrames, nil)).
			Error("Failed to load image")
		return
	}

	p.swap(j.file, decoded, bus)
}

// swap replaces every texture of the previous image with the new frames.
func (p *Pipeline) swap(file data.File, decoded []DecodedFrame, bus *event.Bus) {
	p.unload()

	frames := make([]Frame, 0, len(decoded))
	for i, d := range decoded {
		h, err := p.textures.Register(d.Image)
		if err != nil {
			log.LogWithError(err).With(log.F("path", file.Path), log.F("frame", i)).Warn("Skipping frame")
			continue
		}
		b := d.Image.Bounds()
		frames = append(frames, Frame{Handle: h, Width: b.Dx(), Height: b.Dy(), Delay: d.Delay})
	}

	p.frames = frames
	p.index = 0
	p.last = p.now()
	p.source = file
	p.hasSource = true

	if len(frames) == 0 {
		log.LogWithFields(log.F("path", file.Path)).Error("No frame of the image could be registered")
		return
	}

	first := frames[0]
	log.LogWithFields(
		log.F("path", file.Path),
		log.F("frames", len(frames)),
		log.F("width", first.Width),
		log.F("height", first.Height),
	).Info("Image loaded")

	bus.Push(event.ImageLoaded{
		Handle: first.Handle,
		Width:  first.Width,
		Height: first.Height,
		Source: file,
	})
}

func (p *Pipeline) unload() {
	for _, f := range p.frames {
		p.textures.Unregister(f.Handle)
	}
	p.frames = nil
	p.index = 0
}

func (p *Pipeline) animate(bus *event.Bus) {
	if len(p.frames) < 2 {
		return
	}
	now := p.now()
	elapsed := now.Sub(p.last)
	if elapsed < p.frames[p.index].Delay {
		return
	}

	p.index = (p.index + 1) % len(p.frames)
	p.last = now
	bus.Push(event.FrameSwapped{Handle: p.frames[p.index].Handle})
}

// TimeToNextUpdate returns the time left before the next frame advance,
// 0 when overdue. The second result is false unless an animation is shown.
func (p *Pipeline) TimeToNextUpdate() (time.Duration, bool) {
	if len(p.frames) < 2 {
		return 0, false
	}
	remaining := p.frames[p.index].Delay - p.now().Sub(p.last)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// Current returns the frame on screen.
func (p *Pipeline) Current() (Frame, bool) {
	if p.index < len(p.frames) {
		return p.frames[p.index], true
	}
	return Frame{}, false
}

// Frames returns a copy of the registered frames.
func (p *Pipeline) Frames() []Frame {
	return append([]Frame(nil), p.frames...)
}

// FrameIndex returns the position of the frame on screen.
func (p *Pipeline) FrameIndex() int { return p.index }

// Busy reports whether a decode is in flight.
func (p *Pipeline) Busy() bool { return p.job != nil }

// Pending returns the file being decoded.
func (p *Pipeline) Pending() (data.File, bool) {
	if p.job == nil {
		return data.File{}, false
	}
	return p.job.file, true
}

// Source returns the file whose frames are registered.
func (p *Pipeline) Source() (data.File, bool) {
	return p.source, p.hasSource
}

// Close abandons any decode in flight and releases every texture.
func (p *Pipeline) Close() {
	if p.job != nil {
		p.job.abandon()
		p.job = nil
	}
	p.unload()
}
