package catalog

import (
	"aspect/internal/event"
	"aspect/internal/log"
)

// Update applies the bus's current events in order and pushes follow-up
// events for the next frame: a Load when the selected file changed, and a
// NavNext when the slideshow is due.
func (c *Catalog) Update(bus *event.Bus) {
	identity := false

	for _, e := range bus.Events() {
		switch ev := e.(type) {
		case event.NavNext:
			c.next()
			identity = true
		case event.NavPrev:
			c.prev()
			identity = true
		case event.NavGoTo:
			c.goTo(ev.Index)
			identity = true
		case event.SortBy:
			c.sortBy(ev.Method)
			identity = true
		case event.FilterText:
			c.applyFilter(c.filter.WithName(ev.Text))
			identity = true
		case event.FilterRating:
			c.applyFilter(c.filter.WithRating(ev.Rating))
			identity = true
		case event.SetRating:
			c.setRating(ev.Rating)
		case event.SlideshowStart:
			c.slideshowStart(ev.Interval)
		case event.SlideshowStop:
			c.slideshowStop()
		case event.Rescan:
			c.rescan()
			identity = true
		}
	}

	if identity {
		c.emitIfChanged(bus)
	}

	if c.slideshow > 0 {
		now := c.now()
		if now.Sub(c.slideshowLast) >= c.slideshow {
			bus.Push(event.NavNext{})
			c.slideshowLast = now
		}
	}
}

// EmitCurrent pushes a Load for the selected file. The host calls it once
// at startup.
func (c *Catalog) EmitCurrent(bus *event.Bus) {
	c.emitIfChanged(bus)
}

func (c *Catalog) emitIfChanged(bus *event.Bus) {
	f, ok := c.Current()
	if !ok || f.Path == c.lastEmitted {
		return
	}
	log.Debugf("Selected %s", f.Path)
	c.lastEmitted = f.Path
	bus.Push(event.Load{File: f})
}
