package messages

import "aspect/internal/metadata"

// TickMsg drives one frame. Ticks whose Seq is not the latest are stale.
type TickMsg struct {
	Seq int
}

// ChangeMsg reports that the watched directory changed.
type ChangeMsg struct{}

// InfoMsg carries file details loaded in the background.
type InfoMsg struct {
	Path string
	Info *metadata.Info
	Err  error
}
