package pipeline

import (
	"image"

	"aspect/internal/errors"
	"aspect/internal/event"
)

// TextureRegistry turns decoded frames into renderable textures.
type TextureRegistry interface {
	Register(img *image.RGBA) (event.Handle, error)
	Unregister(h event.Handle)
}

// Textures is an in-memory TextureRegistry that the terminal renderer reads
// pixels back from. It is not safe for concurrent use.
type Textures struct {
	next     event.Handle
	images   map[event.Handle]*image.RGBA
	maxBytes int
	bytes    int
}

// NewTextures returns an empty registry. maxBytes caps the total pixel
// memory held; 0 means unlimited.
func NewTextures(maxBytes int) *Textures {
	return &Textures{images: make(map[event.Handle]*image.RGBA), maxBytes: maxBytes}
}

func (t *Textures) Register(img *image.RGBA) (event.Handle, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, errors.NewDecodeError("cannot register an empty texture", "", errors.TextureRegistrationFailed, nil)
	}
	size := len(img.Pix)
	if t.maxBytes > 0 && t.bytes+size > t.maxBytes {
		return 0, errors.NewDecodeError("texture memory limit reached", "", errors.TextureRegistrationFailed, nil)
	}

	t.next++
	t.images[t.next] = img
	t.bytes += size
	return t.next, nil
}

func (t *Textures) Unregister(h event.Handle) {
	if img, ok := t.images[h]; ok {
		t.bytes -= len(img.Pix)
		delete(t.images, h)
	}
}

// Get returns the pixels registered under h.
func (t *Textures) Get(h event.Handle) (*image.RGBA, bool) {
	img, ok := t.images[h]
	return img, ok
}

// Len returns the number of registered textures.
func (t *Textures) Len() int {
	return len(t.images)
}
