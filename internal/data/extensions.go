package data

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// SupportedExtensions is the fixed allow-list of image extensions.
var SupportedExtensions = []string{"png", "jpg", "jpeg", "bmp", "gif", "tiff", "tif", "webp"}

// AnimatedExtension is decoded frame by frame; everything else is static.
const AnimatedExtension = "gif"

var imagePattern = glob.MustCompile("*.{" + strings.Join(SupportedExtensions, ",") + "}")

// IsImageName reports whether name carries a supported extension,
// ignoring case.
func IsImageName(name string) bool {
	return imagePattern.Match(strings.ToLower(filepath.Base(name)))
}

// ExtensionIs reports whether path has extension ext, ignoring case.
func ExtensionIs(path, ext string) bool {
	e := strings.TrimPrefix(filepath.Ext(path), ".")
	return strings.EqualFold(e, strings.TrimPrefix(ext, "."))
}

// IsAnimatedName reports whether path uses the animated format.
func IsAnimatedName(path string) bool {
	return ExtensionIs(path, AnimatedExtension)
}
