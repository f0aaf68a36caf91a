package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"aspect/internal/data"
	"aspect/internal/log"

	"github.com/fsnotify/fsnotify"
)

// Change is an image file appearing, changing or disappearing in a watched
// directory.
type Change struct {
	Path      string
	Op        fsnotify.Op
	Timestamp time.Time
}

// Removed reports whether the file is gone from its old name.
func (c Change) Removed() bool {
	return c.Op.Has(fsnotify.Remove) || c.Op.Has(fsnotify.Rename)
}

// Watcher monitors directories for image file changes using fsnotify.
// Changes are delivered on Changes; when the buffer is full they are dropped,
// which is harmless because any single change triggers a full rescan.
type Watcher struct {
	directories []string
	changes     chan Change
	stopChan    chan struct{}
	doneChan    chan struct{}
	fsWatcher   *fsnotify.Watcher
	mutex       sync.RWMutex
	running     bool
}

// New creates a new directory watcher using fsnotify
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		directories: []string{},
		changes:     make(chan Change, 10),
		fsWatcher:   fsWatcher,
	}, nil
}

// AddDirectory adds a directory to watch. Subdirectories are not watched.
func (w *Watcher) AddDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("error accessing directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}

	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to add directory %s to watcher: %w", dir, err)
	}

	w.mutex.Lock()
	found := false
	for _, existing := range w.directories {
		if existing == dir {
			found = true
			break
		}
	}
	if !found {
		w.directories = append(w.directories, dir)
	}
	w.mutex.Unlock()

	log.LogWithFields(log.F("directory", dir)).Info("Watching directory")
	return nil
}

// Changes returns the channel that delivers image file changes. It is closed
// once the watcher has stopped.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Start begins processing fsnotify events in the background.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	if w.running {
		return fmt.Errorf("watcher already running")
	}
	if w.doneChan != nil {
		return fmt.Errorf("watcher cannot be restarted")
	}
	w.running = true
	w.stopChan = make(chan struct{})
	w.doneChan = make(chan struct{})

	go w.loop(w.stopChan, w.doneChan)

	log.Debug("Watcher started.")
	return nil
}

func (w *Watcher) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer close(w.changes)

	for {
		select {
		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if change, ok := toChange(ev); ok {
				select {
				case w.changes <- change:
				default:
					log.LogWithFields(log.F("file", ev.Name)).Debug("Change channel is full, dropped event")
				}
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.LogWithFields(log.F("error", err)).Error("fsnotify watcher error")

		case <-stop:
			return
		}
	}
}

// toChange keeps events that can alter a directory listing of images.
func toChange(ev fsnotify.Event) (Change, bool) {
	if !data.IsImageName(filepath.Base(ev.Name)) {
		return Change{}, false
	}
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Remove) &&
		!ev.Op.Has(fsnotify.Rename) && !ev.Op.Has(fsnotify.Write) {
		return Change{}, false
	}
	if ev.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err != nil || info.IsDir() {
			return Change{}, false
		}
	}
	return Change{Path: ev.Name, Op: ev.Op, Timestamp: time.Now()}, true
}

// Stop halts the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	w.mutex.Lock()
	if !w.running {
		if w.doneChan == nil {
			// Never started: release fsnotify and refuse a later Start.
			w.doneChan = make(chan struct{})
			close(w.doneChan)
			w.fsWatcher.Close()
		}
		w.mutex.Unlock()
		return
	}
	w.running = false
	close(w.stopChan)
	done := w.doneChan
	w.mutex.Unlock()

	<-done
	if err := w.fsWatcher.Close(); err != nil {
		log.LogWithFields(log.F("error", err)).Error("Error closing fsnotify watcher")
	}
	log.Debug("Watcher stopped.")
}

// IsRunning returns whether the watcher is currently active
func (w *Watcher) IsRunning() bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	return w.running
}

// GetDirectories returns the list of directories being watched
func (w *Watcher) GetDirectories() []string {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	dirsCopy := make([]string, len(w.directories))
	copy(dirsCopy, w.directories)
	return dirsCopy
}

// Drain empties ch without blocking and reports whether anything was read.
// The frame loop uses it to fold any number of changes into one rescan.
func Drain(ch <-chan Change) bool {
	got := false
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return got
			}
			got = true
		default:
			return got
		}
	}
}
