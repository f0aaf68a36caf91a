package catalog

import (
	"math/rand"
	"sort"
	"time"

	"aspect/internal/data"
	"aspect/internal/log"
)

// setCurrent selects i modulo the visible length and reports whether the
// selection moved.
func (c *Catalog) setCurrent(i int) bool {
	n := len(c.visible)
	if n == 0 {
		c.current = 0
		return false
	}
	i %= n
	if i < 0 {
		i += n
	}
	if i == c.current {
		return false
	}
	c.current = i
	return true
}

func (c *Catalog) next() bool {
	return c.setCurrent(c.current + 1)
}

func (c *Catalog) prev() bool {
	i := c.current
	if i == 0 {
		i = max(len(c.visible), 1)
	}
	return c.setCurrent(i - 1)
}

func (c *Catalog) goTo(i int) bool {
	return c.setCurrent(i)
}

func (c *Catalog) sortBy(method data.FileSort) {
	if c.sort == method {
		log.Infof("Sort files by %s skipped due to already sorted", method)
		return
	}
	c.sort = method
	c.applySort()
}

func (c *Catalog) applySort() {
	selected, ok := c.Current()
	if !ok {
		c.resort("")
		c.current = 0
		return
	}
	if !c.resort(selected.Path) {
		c.current = 0
	}
}

// resort orders the visible files by the active method and moves the
// selection to selected. It reports whether selected was found.
func (c *Catalog) resort(selected string) bool {
	log.Infof("Sort files by %s", c.sort)

	switch c.sort {
	case data.SortByName:
		sort.SliceStable(c.visible, func(i, j int) bool {
			return c.visible[i].Name() < c.visible[j].Name()
		})
	case data.SortByLastModified:
		modified := make(map[string]time.Time, len(c.visible))
		for _, f := range c.visible {
			modified[f.Path] = f.LastModified()
		}
		sort.SliceStable(c.visible, func(i, j int) bool {
			return modified[c.visible[i].Path].Before(modified[c.visible[j].Path])
		})
	case data.SortRandom:
		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		rng.Shuffle(len(c.visible), func(i, j int) {
			c.visible[i], c.visible[j] = c.visible[j], c.visible[i]
		})
	}

	if selected == "" {
		return false
	}
	for i, f := range c.visible {
		if f.Path == selected {
			log.Debugf("Restoring index to %d after sort", i)
			c.current = i
			return true
		}
	}
	return false
}

func (c *Catalog) applyFilter(filter data.Filter) {
	log.LogWithFields(log.F("filter", filter.String())).Info("Filtering files")

	subset := filter.IsSubsetOf(c.filter)
	if !subset {
		log.Debug("Resetting file list for filtering")
		for len(c.filtered) > 0 {
			last := len(c.filtered) - 1
			c.visible = append(c.visible, c.filtered[last])
			c.filtered = c.filtered[:last]
		}
	}

	for i := 0; i < len(c.visible); {
		f := c.visible[i]
		if filter.Matches(f) {
			i++
			continue
		}
		log.Debugf("Filtering out file: %s", f.Path)
		c.visible = append(c.visible[:i], c.visible[i+1:]...)
		c.filtered = append(c.filtered, f)
		if c.current > 0 && c.current >= i {
			c.current--
		}
	}

	if c.current >= len(c.visible) {
		c.current = max(len(c.visible)-1, 0)
	}

	c.filter = filter
	if !subset {
		c.applySort()
	}
}

func (c *Catalog) setRating(r data.Rating) {
	if c.current >= len(c.visible) {
		return
	}
	c.visible[c.current].Rating = r
	if c.persist == nil {
		return
	}
	if err := c.persist.SetRating(c.visible[c.current]); err != nil {
		log.LogWithError(err).Error("Failed to save rating")
	}
}

func (c *Catalog) slideshowStart(interval time.Duration) {
	if interval <= 0 {
		log.Warnf("Ignoring slideshow with non-positive interval %s", interval)
		return
	}
	c.slideshow = interval
	c.slideshowLast = c.now()
}

func (c *Catalog) slideshowStop() {
	c.slideshow = 0
}

// IsSlideshowEnabled reports whether the slideshow is running.
func (c *Catalog) IsSlideshowEnabled() bool { return c.slideshow > 0 }

// SlideshowInterval returns the running slideshow interval, 0 when stopped.
func (c *Catalog) SlideshowInterval() time.Duration { return c.slideshow }

// TimeToNextSlide returns how long until the slideshow advances.
// The second result is false while the slideshow is stopped.
func (c *Catalog) TimeToNextSlide() (time.Duration, bool) {
	if c.slideshow <= 0 {
		return 0, false
	}
	remaining := c.slideshow - c.now().Sub(c.slideshowLast)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, true
}

// rescan re-reads the directory. Known files keep their in-memory ratings,
// new files are looked up in the rating store, the filter is applied from
// scratch and the selection follows its file when it still exists.
func (c *Catalog) rescan() {
	if c.dir == "" {
		log.Warn("Rescan requested for a catalog without a directory")
		return
	}

	files, err := listImages(c.dir)
	if err != nil {
		log.LogWithError(err).Error("Failed to rescan directory")
		return
	}

	known := make(map[string]data.Rating, c.Total())
	for _, f := range c.visible {
		known[f.Path] = f.Rating
	}
	for _, f := range c.filtered {
		known[f.Path] = f.Rating
	}

	var fresh []data.File
	var freshIdx []int
	for i := range files {
		if r, ok := known[files[i].Path]; ok {
			files[i].Rating = r
			continue
		}
		fresh = append(fresh, files[i])
		freshIdx = append(freshIdx, i)
	}
	if c.persist != nil && len(fresh) > 0 {
		if err := c.persist.Populate(fresh); err != nil {
			log.LogWithError(err).Warn("Failed to load ratings for new files")
		}
		for j, i := range freshIdx {
			files[i].Rating = fresh[j].Rating
		}
	}

	selected, _ := c.Current()
	previous := c.current

	c.visible = c.visible[:0]
	c.filtered = c.filtered[:0]
	for _, f := range files {
		if c.filter.Matches(f) {
			c.visible = append(c.visible, f)
		} else {
			c.filtered = append(c.filtered, f)
		}
	}

	if !c.resort(selected.Path) {
		c.current = min(previous, max(len(c.visible)-1, 0))
	}

	log.LogWithFields(
		log.F("dir", c.dir),
		log.F("files", c.Total()),
		log.F("new", len(fresh)),
		log.F("visible", len(c.visible)),
	).Info("Rescanned directory")
}
