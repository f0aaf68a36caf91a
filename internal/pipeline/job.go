package pipeline

import (
	"context"
	"sync"
	"time"

	"aspect/internal/data"
	"aspect/internal/log"

	"github.com/google/uuid"
)

// job decodes one file on its own goroutine. The pipeline polls it once per
// update and never waits on it.
type job struct {
	id     uuid.UUID
	file   data.File
	cancel context.CancelFunc

	mu     sync.Mutex
	done   bool
	frames []DecodedFrame
	err    error
}

func startJob(file data.File, decode Decoder) *job {
	ctx, cancel := context.WithCancel(context.Background())
	j := &job{
		id:     uuid.New(),
		file:   file,
		cancel: cancel,
	}
	go j.run(ctx, decode)
	return j
}

func (j *job) run(ctx context.Context, decode Decoder) {
	start := time.Now()
	frames, err := decode(ctx, j.file.Path)

	j.mu.Lock()
	j.frames, j.err, j.done = frames, err, true
	j.mu.Unlock()

	log.LogWithFields(
		log.F("job", j.id.String()),
		log.F("path", j.file.Path),
		log.F("frames", len(frames)),
		log.F("elapsed", time.Since(start).String()),
	).Debug("Decode finished")
}

// poll returns the result once the goroutine has finished.
func (j *job) poll() (frames []DecodedFrame, done bool, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.frames, j.done, j.err
}

// abandon asks the decoder to stop. Whatever it produces is never read.
func (j *job) abandon() {
	j.cancel()
	log.LogWithFields(log.F("job", j.id.String()), log.F("path", j.file.Path)).Debug("Abandoned decode")
}
