// Package capture records a storyboard into a video container.
//
// The Driver renders the timeline frame by frame onto an offscreen surface,
// streams every frame into an Encoder and assembles what the encoder emits
// into a single playable file. A run moves through
// Idle -> Recording -> Flushing -> Complete | Failed; the offscreen surface
// is released and an unfinished encoder stream aborted on every exit path.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ivlev/sketchstory/internal/scene"
	"github.com/ivlev/sketchstory/internal/story"
)

// State of a Driver
type State int

const (
	Idle State = iota
	Recording
	Flushing
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Flushing:
		return "flushing"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Driver runs captures one at a time
type Driver struct {
	Encoder  Encoder
	Surfaces SurfaceFactory
	Clock    Clock // realtime pacing only; nil means WallClock
	Logger   *log.Logger

	mu    sync.Mutex
	state State
}

// NewDriver returns an idle driver
func NewDriver(enc Encoder, surfaces SurfaceFactory, logger *log.Logger) *Driver {
	return &Driver{Encoder: enc, Surfaces: surfaces, Logger: logger}
}

// State returns the current state
func (d *Driver) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Driver) setState(s State) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

func (d *Driver) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

// Start records steps and returns the assembled container. It blocks until
// the capture is complete, fails or ctx is cancelled.
func (d *Driver) Start(ctx context.Context, steps []story.Step, opts Options) (*Output, error) {
	if err := d.begin(); err != nil {
		return nil, err
	}

	out, err := d.run(ctx, steps, opts.withDefaults())
	if err != nil {
		d.setState(Failed)
		return nil, err
	}
	d.setState(Complete)
	return out, nil
}

// begin checks the preconditions and moves to Recording
func (d *Driver) begin() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state == Recording || d.state == Flushing {
		return ErrBusy
	}
	if d.Surfaces == nil {
		return unsupported(errors.New("no offscreen surface available"))
	}
	if d.Encoder == nil {
		return unsupported(errors.New("no video encoder available"))
	}
	if err := d.Encoder.Probe(); err != nil {
		return unsupported(err)
	}
	d.state = Recording
	return nil
}

func (d *Driver) run(ctx context.Context, steps []story.Step, opts Options) (*Output, error) {
	runID := uuid.NewString()
	logger := d.logger().With("run", runID[:8])

	r, err := scene.New(steps)
	if err != nil {
		return nil, err
	}
	if gerr := r.GeometryErr(); gerr != nil {
		logger.Warn("malformed path data, affected steps are drawn empty", "err", gerr)
	}

	surf, err := d.Surfaces(opts.Width, opts.Height)
	if err != nil {
		return nil, unsupported(err)
	}
	defer surf.Release()

	stream, err := d.Encoder.Open(ctx, Params{
		Width:   opts.Width,
		Height:  opts.Height,
		FPS:     opts.FPS,
		Bitrate: opts.Bitrate,
	})
	if err != nil {
		return nil, encoderErr("open", -1, err)
	}
	finished := false
	defer func() {
		if !finished {
			stream.Abort()
		}
	}()

	endMs := r.TotalMs() + opts.TailMs
	logger.Debug("capture started", "steps", len(steps), "totalMs", r.TotalMs(), "endMs", endMs, "fps", opts.FPS, "pacing", opts.Pacing)

	frames, err := d.record(ctx, r, surf, stream, opts, float64(endMs))
	if err != nil {
		return nil, err
	}

	d.setState(Flushing)
	data, err := drain(ctx, stream, opts.FlushTimeout)
	if err != nil {
		return nil, err
	}
	finished = true

	out, err := assemble(data)
	if err != nil {
		return nil, err
	}
	out.Frames = frames
	out.DurationMs = endMs

	logger.Debug("capture complete", "frames", frames, "bytes", len(out.Data), "mime", out.MIME)
	return out, nil
}

// record runs the frame loop and returns the number of submitted frames
func (d *Driver) record(ctx context.Context, r *scene.Renderer, surf Offscreen, stream Stream, opts Options, endMs float64) (int, error) {
	var p pacer = syntheticPacer{frameMs: 1000 / float64(opts.FPS)}
	if opts.Pacing == PacingRealtime {
		clock := d.Clock
		if clock == nil {
			clock = WallClock{}
		}
		p = newRealtimePacer(clock, opts.FPS)
	}

	submit := func(n int, elapsed float64) error {
		r.Render(elapsed).Draw(surf)
		if err := stream.SubmitFrame(surf.Image(), elapsed); err != nil {
			return encoderErr("submit", n, err)
		}
		if opts.OnFrame != nil {
			opts.OnFrame(n, elapsed)
		}
		return nil
	}

	n := 0
	for ; ; n++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		elapsed, err := p.frameTime(ctx, n)
		if err != nil {
			return n, err
		}
		if elapsed >= endMs {
			break
		}
		if err := submit(n, elapsed); err != nil {
			return n, err
		}
	}

	// the last frame is pinned to the end so the tail is always complete
	if err := submit(n, endMs); err != nil {
		return n, err
	}
	return n + 1, nil
}

// drain finishes the stream and collects its output
func drain(ctx context.Context, stream Stream, timeout time.Duration) ([]byte, error) {
	chunks := stream.Finish()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var buf bytes.Buffer
	for {
		select {
		case c, ok := <-chunks:
			if !ok {
				return buf.Bytes(), nil
			}
			if c.Err != nil {
				return nil, encoderErr("flush", -1, c.Err)
			}
			buf.Write(c.Data)
		case <-timer.C:
			return nil, fmt.Errorf("%w after %s", ErrFlushTimeout, timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// assemble checks the collected bytes form a known video container
func assemble(data []byte) (*Output, error) {
	if len(data) == 0 {
		return nil, encoderErr("assemble", -1, errors.New("encoder produced no data"))
	}
	kind, err := filetype.Video(data)
	if err != nil || kind == filetype.Unknown {
		return nil, encoderErr("assemble", -1, errors.New("output is not a recognised video container"))
	}
	return &Output{
		Data:      data,
		MIME:      kind.MIME.Value,
		Extension: kind.Extension,
	}, nil
}
