// Package catalog keeps the ordered, filterable list of images in a
// directory together with the current selection and each file's rating.
package catalog

import (
	"os"
	"path/filepath"
	"time"

	"aspect/internal/data"
	"aspect/internal/errors"
	"aspect/internal/log"
	"aspect/internal/persist"
)

// Persistence stores ratings for the catalog's directory.
type Persistence interface {
	// Populate fills in the stored rating of each file that has one.
	Populate(files []data.File) error
	// SetRating stores file.Rating, removing the record when it is absent.
	SetRating(file data.File) error
	Close() error
}

// Catalog is owned by the frame loop and is not safe for concurrent use.
type Catalog struct {
	dir      string
	visible  []data.File
	filtered []data.File
	current  int
	sort     data.FileSort
	filter   data.Filter
	persist  Persistence

	slideshow     time.Duration // 0 = stopped
	slideshowLast time.Time
	lastEmitted   string

	now func() time.Time
}

type options struct {
	persist      bool
	databaseName string
	sort         data.FileSort
	now          func() time.Time
}

// Option configures catalog construction.
type Option func(*options)

// WithoutPersistence skips opening the rating store.
func WithoutPersistence() Option {
	return func(o *options) { o.persist = false }
}

// WithDatabaseName sets the rating store file name inside the directory.
func WithDatabaseName(name string) Option {
	return func(o *options) { o.databaseName = name }
}

// WithSort sets the initial sort method.
func WithSort(method data.FileSort) Option {
	return func(o *options) { o.sort = method }
}

// WithClock replaces time.Now for the slideshow timer.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{
		persist:      true,
		databaseName: persist.DefaultDatabaseName,
		sort:         data.SortByName,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// FromArgs builds a catalog from command line arguments. The first existing
// argument naming an image file wins; otherwise the first existing directory.
func FromArgs(args []string, opts ...Option) (*Catalog, error) {
	var existing []string
	for _, a := range args {
		if _, err := os.Stat(a); err == nil {
			existing = append(existing, a)
		}
	}

	for _, p := range existing {
		if c, err := FromFile(p, opts...); err == nil {
			return c, nil
		}
	}
	for _, p := range existing {
		if c, err := FromDir(p, opts...); err == nil {
			return c, nil
		}
	}

	return nil, errors.NewFileError("no image file or directory in arguments", "", errors.InvalidPath, nil)
}

// FromFile builds a catalog of path's directory with path selected.
func FromFile(path string, opts ...Option) (*Catalog, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.NewFileError("invalid file path", path, errors.InvalidPath, err)
	}
	if !isImageFile(abs) {
		return nil, errors.NewFileError("not a supported image file", path, errors.NotAFile, nil)
	}

	c, err := FromDir(filepath.Dir(abs), opts...)
	if err != nil {
		return nil, err
	}

	for i, f := range c.visible {
		if f.Path == abs {
			c.current = i
			return c, nil
		}
	}

	c.Close()
	return nil, errors.NewFileError("file not found in directory listing", path, errors.FileNotFound, nil)
}

// FromDir builds a catalog of the supported images directly inside dir.
// A rating store that cannot be opened is logged and the catalog runs
// without one.
func FromDir(dir string, opts ...Option) (*Catalog, error) {
	o := buildOptions(opts)

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.NewFileError("invalid directory path", dir, errors.InvalidPath, err)
	}

	files, err := listImages(abs)
	if err != nil {
		return nil, err
	}

	var p Persistence
	if o.persist {
		store, err := persist.OpenDir(abs, persist.WithDatabaseName(o.databaseName))
		if err != nil {
			log.LogWithError(err).Error("Could not open rating store, ratings will not be saved")
		} else {
			p = store
			if err := p.Populate(files); err != nil {
				log.LogWithError(err).Warn("Failed to load ratings")
			}
		}
	}

	c := newCatalog(files, p, o)
	c.dir = abs
	return c, nil
}

// FromFiles builds a catalog over an explicit file list. persist may be nil.
func FromFiles(files []data.File, persist Persistence, opts ...Option) *Catalog {
	return newCatalog(files, persist, buildOptions(opts))
}

func newCatalog(files []data.File, p Persistence, o options) *Catalog {
	c := &Catalog{
		visible:       append([]data.File(nil), files...),
		sort:          o.sort,
		persist:       p,
		now:           o.now,
		slideshowLast: o.now(),
	}
	c.resort("")
	return c
}

// Dir returns the catalog directory, "" for catalogs built from a file list.
func (c *Catalog) Dir() string { return c.dir }

// Current returns the selected file.
func (c *Catalog) Current() (data.File, bool) {
	if c.current < len(c.visible) {
		return c.visible[c.current], true
	}
	return data.File{}, false
}

// CurrentIndex returns the selected position in the visible list.
func (c *Catalog) CurrentIndex() int { return c.current }

// Len returns the number of visible files.
func (c *Catalog) Len() int { return len(c.visible) }

// Total returns the number of files, visible or filtered out.
func (c *Catalog) Total() int { return len(c.visible) + len(c.filtered) }

// File returns the visible file at i.
func (c *Catalog) File(i int) (data.File, bool) {
	if i < 0 || i >= len(c.visible) {
		return data.File{}, false
	}
	return c.visible[i], true
}

// Files returns a copy of the visible files in order.
func (c *Catalog) Files() []data.File {
	return append([]data.File(nil), c.visible...)
}

// FilteredFiles returns a copy of the files hidden by the filter.
func (c *Catalog) FilteredFiles() []data.File {
	return append([]data.File(nil), c.filtered...)
}

// Sort returns the active sort method.
func (c *Catalog) Sort() data.FileSort { return c.sort }

// Filter returns the active filter.
func (c *Catalog) Filter() data.Filter { return c.filter }

// HasPersistence reports whether ratings are being stored.
func (c *Catalog) HasPersistence() bool { return c.persist != nil }

// Close closes the rating store. Calling it again is a no-op.
func (c *Catalog) Close() error {
	if c.persist == nil {
		return nil
	}
	p := c.persist
	c.persist = nil
	if err := p.Close(); err != nil {
		log.LogWithError(err).Error("Failed to close rating store")
		return err
	}
	return nil
}

func listImages(dir string) ([]data.File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileError("directory not found", dir, errors.FileNotFound, err)
		}
		return nil, errors.NewFileError("cannot access directory", dir, errors.FileAccessDenied, err)
	}
	if !info.IsDir() {
		return nil, errors.NewFileError("not a directory", dir, errors.InvalidPath, nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewFileError("cannot read directory", dir, errors.FileAccessDenied, err)
	}

	files := make([]data.File, 0, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() || !isImageFile(path) {
			continue
		}
		files = append(files, data.NewFile(path))
	}
	return files, nil
}

// isImageFile follows symlinks, like the directory listing does.
func isImageFile(path string) bool {
	if !data.IsImageName(path) {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
