// Package event defines the messages exchanged between the catalog, the
// image pipeline and the host, and the two-generation bus that carries them.
package event

import (
	"fmt"
	"time"

	"aspect/internal/data"
)

// Handle identifies a registered texture.
type Handle uint64

// Event is implemented by every message type in this package.
type Event interface {
	isEvent()
}

// ImageLoaded is published once a decode finished and its first frame is
// registered.
type ImageLoaded struct {
	Handle Handle
	Width  int
	Height int
	Source data.File
}

// FrameSwapped is published when an animation advanced to Handle.
type FrameSwapped struct {
	Handle Handle
}

type NavNext struct{}

type NavPrev struct{}

// NavGoTo selects Index, reduced modulo the visible length.
type NavGoTo struct {
	Index int
}

// Load asks the pipeline to display File.
type Load struct {
	File data.File
}

type SortBy struct {
	Method data.FileSort
}

// FilterText replaces the name part of the active filter. "" clears it.
type FilterText struct {
	Text string
}

// FilterRating replaces the rating floor of the active filter. NoRating clears it.
type FilterRating struct {
	Rating data.Rating
}

// SetRating rates the selected file. NoRating removes its rating.
type SetRating struct {
	Rating data.Rating
}

type SlideshowStart struct {
	Interval time.Duration
}

type SlideshowStop struct{}

// Rescan asks the catalog to re-read its directory.
type Rescan struct{}

func (ImageLoaded) isEvent()    {}
func (FrameSwapped) isEvent()   {}
func (NavNext) isEvent()        {}
func (NavPrev) isEvent()        {}
func (NavGoTo) isEvent()        {}
func (Load) isEvent()           {}
func (SortBy) isEvent()         {}
func (FilterText) isEvent()     {}
func (FilterRating) isEvent()   {}
func (SetRating) isEvent()      {}
func (SlideshowStart) isEvent() {}
func (SlideshowStop) isEvent()  {}
func (Rescan) isEvent()         {}

// Name returns a short label for logs.
func Name(e Event) string {
	switch ev := e.(type) {
	case ImageLoaded:
		return fmt.Sprintf("ImageLoaded(%d)", ev.Handle)
	case FrameSwapped:
		return fmt.Sprintf("FrameSwapped(%d)", ev.Handle)
	case NavNext:
		return "NavNext"
	case NavPrev:
		return "NavPrev"
	case NavGoTo:
		return fmt.Sprintf("NavGoTo(%d)", ev.Index)
	case Load:
		return fmt.Sprintf("Load(%s)", ev.File.Name())
	case SortBy:
		return fmt.Sprintf("SortBy(%s)", ev.Method)
	case FilterText:
		return fmt.Sprintf("FilterText(%q)", ev.Text)
	case FilterRating:
		return fmt.Sprintf("FilterRating(%s)", ev.Rating)
	case SetRating:
		return fmt.Sprintf("SetRating(%s)", ev.Rating)
	case SlideshowStart:
		return fmt.Sprintf("SlideshowStart(%s)", ev.Interval)
	case SlideshowStop:
		return "SlideshowStop"
	case Rescan:
		return "Rescan"
	default:
		return fmt.Sprintf("%T", e)
	}
}
