// Package playback drives a live, incrementally revealed animation.
//
// The Driver asks its Scheduler for one frame callback at a time, renders
// the storyboard at the time elapsed since the run started and hands the
// frame to a FrameSink. Starting a new run cancels the previous one; frame
// callbacks that belong to a cancelled run are dropped.
package playback

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ivlev/sketchstory/internal/scene"
	"github.com/ivlev/sketchstory/internal/schedule"
	"github.com/ivlev/sketchstory/internal/story"
)

// ErrNothingToReplay is returned by Replay before any run was started
var ErrNothingToReplay = errors.New("nothing to replay")

// State of a Driver
type State int

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// FrameSink receives rendered frames. Present is never called for a run
// after Stop or Start returned, so it must not call Stop, Start or Replay
// on the same Driver synchronously; do that from another goroutine.
type FrameSink interface {
	Present(f scene.Frame)
}

// SinkFunc adapts a function to FrameSink
type SinkFunc func(f scene.Frame)

func (fn SinkFunc) Present(f scene.Frame) { fn(f) }

// Run is one playback of a storyboard
type Run struct {
	id       string
	renderer *scene.Renderer
	start    time.Time
	done     chan struct{}

	frames    atomic.Int64
	cancelled atomic.Bool

	// guarded by Driver.mu
	closed  bool
	lastMs  float64
	pending func()
}

// ID identifies the run in logs
func (r *Run) ID() string { return r.id }

// Done is closed when the run finished or was cancelled
func (r *Run) Done() <-chan struct{} { return r.done }

// Frames is the number of frames presented so far
func (r *Run) Frames() int { return int(r.frames.Load()) }

// Cancelled reports whether the run was stopped before reaching the end
func (r *Run) Cancelled() bool { return r.cancelled.Load() }

// TotalMs is the length of the run's timeline
func (r *Run) TotalMs() int { return r.renderer.TotalMs() }

// Schedule is the run's timeline
func (r *Run) Schedule() *schedule.Schedule { return r.renderer.Schedule() }

// Driver plays storyboards one at a time
type Driver struct {
	sched  Scheduler
	sink   FrameSink
	logger *log.Logger

	// presentMu serializes Present against cancellation; taken before mu
	presentMu sync.Mutex

	mu   sync.Mutex
	run  *Run
	last []story.Step
}

// NewDriver returns an idle driver. A nil logger means log.Default().
func NewDriver(sched Scheduler, sink FrameSink, logger *log.Logger) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{sched: sched, sink: sink, logger: logger}
}

// State returns Running while a run is in flight
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.run != nil {
		return Running
	}
	return Idle
}

// Start cancels the current run, if any, and plays steps from the
// beginning. Invalid steps are rejected and leave the current run alone.
func (d *Driver) Start(steps []story.Step) (*Run, error) {
	r, err := scene.New(steps)
	if err != nil {
		return nil, err
	}
	if gerr := r.GeometryErr(); gerr != nil {
		d.logger.Warn("malformed path data, affected steps are drawn empty", "err", gerr)
	}

	d.mu.Lock()
	hadRun := d.cancelLocked()
	run := &Run{
		id:       uuid.NewString(),
		renderer: r,
		start:    d.sched.Now(),
		done:     make(chan struct{}),
	}
	d.run = run
	d.last = r.Steps()
	d.logger.Debug("playback started", "run", run.id[:8], "steps", len(steps), "totalMs", r.TotalMs())

	d.scheduleLocked(run)
	d.mu.Unlock()

	if hadRun {
		d.awaitPresent()
	}
	return run, nil
}

// Replay restarts the most recently started storyboard
func (d *Driver) Replay() (*Run, error) {
	d.mu.Lock()
	steps := d.last
	d.mu.Unlock()
	if steps == nil {
		return nil, ErrNothingToReplay
	}
	return d.Start(steps)
}

// Stop cancels the current run and waits for a frame that is being
// presented to finish
func (d *Driver) Stop() {
	d.mu.Lock()
	hadRun := d.cancelLocked()
	d.mu.Unlock()
	if hadRun {
		d.awaitPresent()
	}
}

// awaitPresent returns once no Present is in flight
func (d *Driver) awaitPresent() {
	d.presentMu.Lock()
	defer d.presentMu.Unlock()
}

func (d *Driver) cancelLocked() bool {
	run := d.run
	if run == nil {
		return false
	}
	if run.pending != nil {
		run.pending()
		run.pending = nil
	}
	run.cancelled.Store(true)
	d.closeLocked(run)
	d.logger.Debug("playback cancelled", "run", run.id[:8], "frames", run.Frames())
	return true
}

func (d *Driver) closeLocked(run *Run) {
	if run.closed {
		return
	}
	run.closed = true
	close(run.done)
	if d.run == run {
		d.run = nil
	}
}

func (d *Driver) scheduleLocked(run *Run) {
	run.pending = d.sched.ScheduleNextFrame(func(now time.Time) {
		d.tick(run, now)
	})
}

func (d *Driver) tick(run *Run, now time.Time) {
	d.mu.Lock()
	if d.run != run || run.closed {
		d.mu.Unlock()
		return
	}
	run.pending = nil

	total := float64(run.renderer.TotalMs())
	elapsed := float64(now.Sub(run.start)) / float64(time.Millisecond)
	if elapsed < run.lastMs {
		elapsed = run.lastMs
	}
	final := elapsed >= total
	if final {
		elapsed = total
	}
	run.lastMs = elapsed
	d.mu.Unlock()

	frame := run.renderer.Render(elapsed)

	// the run may have been cancelled while rendering
	d.presentMu.Lock()
	if !d.live(run) {
		d.presentMu.Unlock()
		return
	}
	d.sink.Present(frame)
	run.frames.Add(1)
	d.presentMu.Unlock()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.run != run || run.closed {
		return
	}
	if final {
		d.closeLocked(run)
		d.logger.Debug("playback finished", "run", run.id[:8], "frames", run.Frames())
		return
	}
	d.scheduleLocked(run)
}

func (d *Driver) live(run *Run) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run == run && !run.closed
}
