package event

import (
	"sync"
	"sync/atomic"

	"aspect/internal/log"
)

// Bus is a two-generation queue. Events pushed during frame N become
// visible through Events in frame N+1, after Rotate.
//
// Push may be called from any goroutine. Events and Rotate belong to the
// frame loop; Rotate must not run concurrently with itself.
type Bus struct {
	mu      sync.Mutex
	pending []Event

	current atomic.Pointer[[]Event]
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	b := &Bus{}
	empty := []Event{}
	b.current.Store(&empty)
	return b
}

// Push appends e to the pending generation.
func (b *Bus) Push(e Event) {
	log.Debugf("event pushed: %s", Name(e))

	b.mu.Lock()
	b.pending = append(b.pending, e)
	b.mu.Unlock()
}

// PushAll appends events to the pending generation in order.
func (b *Bus) PushAll(events []Event) {
	if len(events) == 0 {
		return
	}
	for _, e := range events {
		log.Debugf("event pushed: %s", Name(e))
	}

	b.mu.Lock()
	b.pending = append(b.pending, events...)
	b.mu.Unlock()
}

// Events returns the current generation. The slice must not be modified and
// is valid until the next Rotate.
func (b *Bus) Events() []Event {
	return *b.current.Load()
}

// Rotate freezes the pending generation as current and starts a new empty
// pending generation.
func (b *Bus) Rotate() {
	b.mu.Lock()
	next := b.pending
	b.pending = nil
	b.mu.Unlock()

	if next == nil {
		next = []Event{}
	}
	b.current.Store(&next)
}

// Pending reports how many events wait for the next Rotate.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
