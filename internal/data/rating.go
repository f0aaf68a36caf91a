package data

import (
	"fmt"
	"strings"
)

// MinRating and MaxRating bound every present rating.
const (
	MinRating = 1
	MaxRating = 5
)

// Rating is an optional 1..5 score. The zero value means "no rating";
// a present rating of 0 cannot be constructed.
type Rating struct {
	n uint8 // 0 = absent, otherwise the score itself
}

// NoRating is the absent rating.
var NoRating = Rating{}

// NewRating returns a present rating, clamping n into 1..5.
func NewRating(n int) Rating {
	if n < MinRating {
		n = MinRating
	}
	if n > MaxRating {
		n = MaxRating
	}
	return Rating{n: uint8(n)}
}

// Value returns the score and whether a rating is present.
func (r Rating) Value() (int, bool) {
	return int(r.n), r.n != 0
}

// IsSet reports whether a rating is present.
func (r Rating) IsSet() bool {
	return r.n != 0
}

// AtLeast reports whether r satisfies floor. An absent floor is satisfied by
// everything; a present floor is never satisfied by an absent rating.
func (r Rating) AtLeast(floor Rating) bool {
	return r.n >= floor.n
}

// floor returns the numeric lower bound, 0 when absent.
func (r Rating) floor() int {
	return int(r.n)
}

// Stars renders the rating as filled and empty stars.
func (r Rating) Stars() string {
	return strings.Repeat("★", int(r.n)) + strings.Repeat("☆", MaxRating-int(r.n))
}

func (r Rating) String() string {
	if !r.IsSet() {
		return "none"
	}
	return fmt.Sprintf("%d", r.n)
}

// ParseRating parses "1".."5" (clamped) or "none"/"" for the absent rating.
func ParseRating(s string) (Rating, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "none" || s == "0" {
		return NoRating, nil
	}
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return NoRating, fmt.Errorf("invalid rating %q: %w", s, err)
	}
	return NewRating(n), nil
}
