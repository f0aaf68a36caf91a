// Package metadata gathers the details shown for a single image: size,
// timestamps, content type, pixel dimensions and EXIF fields.
package metadata

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	serr "aspect/internal/errors"
	"aspect/internal/log"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/mknote"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Info describes one image file.
type Info struct {
	Path        string            `json:"path"`
	Name        string            `json:"name"`
	Size        int64             `json:"size"`
	ModTime     time.Time         `json:"mod_time"`
	ContentType string            `json:"content_type"`
	Format      string            `json:"format,omitempty"`
	Width       int               `json:"width,omitempty"`
	Height      int               `json:"height,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HumanSize renders Size like "1.2 MB".
func (i *Info) HumanSize() string {
	return humanize.Bytes(uint64(i.Size))
}

// HumanModTime renders ModTime relative to now, like "3 days ago".
func (i *Info) HumanModTime() string {
	return humanize.Time(i.ModTime)
}

// Dimensions renders "WxH", or "" when unknown.
func (i *Info) Dimensions() string {
	if i.Width == 0 || i.Height == 0 {
		return ""
	}
	return fmt.Sprintf("%dx%d", i.Width, i.Height)
}

// Analyzer adds type specific details to an Info.
type Analyzer interface {
	// CanHandle checks if this analyzer is suitable for the given content type
	CanHandle(contentType string) bool
	Analyze(path string, info *Info) error
}

// DimensionsAnalyzer reads the pixel size from the image header.
type DimensionsAnalyzer struct{}

func (a *DimensionsAnalyzer) CanHandle(contentType string) bool {
	return strings.HasPrefix(contentType, "image/")
}

func (a *DimensionsAnalyzer) Analyze(path string, info *Info) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image for dimensions: %w", err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return serr.NewDecodeError("failed to read image header", path, serr.DecodeFailed, err)
	}
	info.Width, info.Height, info.Format = cfg.Width, cfg.Height, format
	return nil
}

// ExifAnalyzer extracts EXIF metadata from image files
type ExifAnalyzer struct{}

// CanHandle is lenient because some cameras produce files that sniff as
// octet-stream.
func (a *ExifAnalyzer) CanHandle(contentType string) bool {
	return strings.HasPrefix(contentType, "image/") || contentType == "application/octet-stream"
}

func (a *ExifAnalyzer) Analyze(path string, info *Info) error {
	logger := log.LogWithFields(log.F("path", path))

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open image file for exif: %w", err)
	}
	defer file.Close()

	x, err := exif.Decode(file)
	if err != nil {
		logger.Debugf("No EXIF data found: %v", err)
		return nil
	}

	fields := map[string]exif.FieldName{
		"DateTimeOriginal": exif.DateTimeOriginal,
		"CameraMake":       exif.Make,
		"CameraModel":      exif.Model,
		"LensModel":        exif.LensModel,
	}
	for key, name := range fields {
		tag, err := x.Get(name)
		if err != nil {
			continue
		}
		if s, _ := tag.StringVal(); s != "" {
			info.Metadata[key] = strings.TrimSpace(s)
		}
	}
	return nil
}

var registerParsers sync.Once

// Engine runs every matching analyzer over a file.
type Engine struct {
	analyzers []Analyzer
}

// New creates an Engine with the dimensions and EXIF analyzers registered.
func New() *Engine {
	registerParsers.Do(func() { exif.RegisterParsers(mknote.All...) })
	return &Engine{analyzers: []Analyzer{&DimensionsAnalyzer{}, &ExifAnalyzer{}}}
}

// Analyze stats and sniffs path, then applies the analyzers. Analyzer
// failures are logged and the partial Info is returned.
func (e *Engine) Analyze(path string) (*Info, error) {
	logger := log.LogWithFields(log.F("path", path))

	st, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewFileError("failed to stat file", path, serr.FileNotFound, err)
		}
		return nil, serr.NewFileError("failed to stat file", path, serr.FileAccessDenied, err)
	}
	if !st.Mode().IsRegular() {
		return nil, serr.NewFileError("not a regular file", path, serr.NotAFile, nil)
	}

	mime, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, serr.NewFileError("failed to detect content type", path, serr.FileAccessDenied, err)
	}

	info := &Info{
		Path:        path,
		Name:        filepath.Base(path),
		Size:        st.Size(),
		ModTime:     st.ModTime(),
		ContentType: mime.String(),
		Metadata:    make(map[string]string),
	}

	for _, analyzer := range e.analyzers {
		if !analyzer.CanHandle(info.ContentType) {
			continue
		}
		if err := analyzer.Analyze(path, info); err != nil {
			logger.With(log.F("analyzer", fmt.Sprintf("%T", analyzer)), log.F("error", err.Error())).
				Warn("Analyzer failed, returning partial info")
		}
	}

	return info, nil
}

// Analyze uses a default Engine.
func Analyze(path string) (*Info, error) {
	return New().Analyze(path)
}
