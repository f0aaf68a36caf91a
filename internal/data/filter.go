package data

import (
	"fmt"
	"strings"
)

// Filter narrows a catalog by file name and minimum rating.
// The zero value matches everything.
type Filter struct {
	name      string // always lowercase, "" means no name constraint
	minRating Rating
}

// WithName returns a copy constrained to names containing name
// (case-insensitive). An empty name removes the constraint.
func (f Filter) WithName(name string) Filter {
	f.name = strings.ToLower(name)
	return f
}

// WithRating returns a copy requiring at least r. NoRating removes the floor.
func (f Filter) WithRating(r Rating) Filter {
	f.minRating = r
	return f
}

// Name returns the lowercase name constraint, "" when absent.
func (f Filter) Name() string { return f.name }

// MinRating returns the rating floor.
func (f Filter) MinRating() Rating { return f.minRating }

// IsEmpty reports whether the filter matches everything.
func (f Filter) IsEmpty() bool {
	return f.name == "" && !f.minRating.IsSet()
}

// IsSubsetOf reports whether everything f matches is also matched by other,
// judged from the constraints alone. When it holds, applying f after other
// only needs to rescan the files other left visible.
func (f Filter) IsSubsetOf(other Filter) bool {
	nameSubset := false
	switch {
	case other.name == "":
		nameSubset = true
	case f.name == "":
		nameSubset = false
	default:
		nameSubset = strings.HasPrefix(f.name, other.name)
	}

	return nameSubset && f.minRating.floor() >= other.minRating.floor()
}

// Matches reports whether file passes both constraints.
func (f Filter) Matches(file File) bool {
	if f.name != "" {
		name := file.Name()
		if name == "" || name == "." || !strings.Contains(strings.ToLower(name), f.name) {
			return false
		}
	}
	return file.Rating.AtLeast(f.minRating)
}

func (f Filter) String() string {
	return fmt.Sprintf("Filter{name=%q, min_rating=%s}", f.name, f.minRating)
}
