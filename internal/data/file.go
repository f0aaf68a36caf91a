package data

import (
	"os"
	"path/filepath"
	"time"
)

// File is one image in a catalog.
type File struct {
	Path   string `json:"path"`
	Rating Rating `json:"-"`
}

// NewFile returns an unrated File for path.
func NewFile(path string) File {
	return File{Path: path}
}

// Name returns the base name of the file, which is also the persistence key.
func (f File) Name() string {
	return filepath.Base(f.Path)
}

// LastModified returns the modification time, or the zero time when the
// file cannot be stat'ed.
func (f File) LastModified() time.Time {
	info, err := os.Stat(f.Path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Size returns the file size in bytes, 0 when unavailable.
func (f File) Size() int64 {
	info, err := os.Stat(f.Path)
	if err != nil {
		return 0
	}
	return info.Size()
}
