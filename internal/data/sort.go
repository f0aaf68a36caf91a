package data

import (
	"fmt"
	"strings"
)

// FileSort is the ordering applied to a catalog.
type FileSort int

const (
	SortByName FileSort = iota
	SortByLastModified
	SortRandom
)

// SortMethods lists every sort method in display order.
var SortMethods = []FileSort{SortByName, SortByLastModified, SortRandom}

func (s FileSort) String() string {
	switch s {
	case SortByName:
		return "Name"
	case SortByLastModified:
		return "Last Modified"
	case SortRandom:
		return "Random"
	default:
		return fmt.Sprintf("FileSort(%d)", int(s))
	}
}

// Key is the configuration spelling of the method.
func (s FileSort) Key() string {
	switch s {
	case SortByLastModified:
		return "last_modified"
	case SortRandom:
		return "random"
	default:
		return "name"
	}
}

// Next cycles to the following method.
func (s FileSort) Next() FileSort {
	return SortMethods[(int(s)+1)%len(SortMethods)]
}

// ParseFileSort accepts the configuration spelling or the display name.
func ParseFileSort(s string) (FileSort, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_") {
	case "name", "":
		return SortByName, nil
	case "last_modified", "modified", "mtime":
		return SortByLastModified, nil
	case "random", "shuffle":
		return SortRandom, nil
	}
	return SortByName, fmt.Errorf("unknown sort method %q", s)
}
