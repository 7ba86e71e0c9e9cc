package capture

import (
	"context"
	"image"
	"time"

	"github.com/ivlev/sketchstory/internal/scene"
)

const (
	DefaultFPS          = 30
	DefaultBitrate      = 4_000_000
	DefaultTailMs       = 400
	DefaultFlushTimeout = 10 * time.Second
	DefaultWidth        = 960
	DefaultHeight       = 540
)

// Pacing selects the clock the frame loop runs on
type Pacing int

const (
	// PacingSynthetic renders frame n at n*1000/fps ms as fast as the
	// encoder accepts frames. Output is identical on fast and slow machines.
	PacingSynthetic Pacing = iota
	// PacingRealtime waits for each frame slot on the wall clock and renders
	// whatever instant it observes, like a screen recorder.
	PacingRealtime
)

func (p Pacing) String() string {
	switch p {
	case PacingSynthetic:
		return "synthetic"
	case PacingRealtime:
		return "realtime"
	}
	return "unknown"
}

// ParsePacing maps "synthetic" and "realtime" to a Pacing
func ParsePacing(s string) (Pacing, bool) {
	switch s {
	case "", "synthetic":
		return PacingSynthetic, true
	case "realtime":
		return PacingRealtime, true
	}
	return 0, false
}

// Options configures one capture. Zero fields take the defaults above.
type Options struct {
	Width, Height int
	FPS           int
	Bitrate       int // bits per second
	TailMs        int // extra time after the last step, negative for none
	FlushTimeout  time.Duration
	Pacing        Pacing

	// OnFrame, if set, is called after each frame is submitted
	OnFrame func(frame int, elapsedMs float64)
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.FPS <= 0 {
		o.FPS = DefaultFPS
	}
	if o.Bitrate <= 0 {
		o.Bitrate = DefaultBitrate
	}
	if o.TailMs < 0 {
		o.TailMs = 0
	} else if o.TailMs == 0 {
		o.TailMs = DefaultTailMs
	}
	if o.FlushTimeout <= 0 {
		o.FlushTimeout = DefaultFlushTimeout
	}
	return o
}

// Params is what the encoder is opened with
type Params struct {
	Width, Height int
	FPS           int
	Bitrate       int
}

// Encoder is a video sink factory
type Encoder interface {
	// Probe reports whether the encoder can run in this environment
	Probe() error
	// Open starts one encoding session
	Open(ctx context.Context, p Params) (Stream, error)
}

// Stream is one encoding session.
type Stream interface {
	// SubmitFrame encodes one frame. The image is only valid during the call.
	SubmitFrame(img *image.RGBA, timestampMs float64) error
	// Finish signals the end of input. The returned channel yields the
	// encoded container in order and is closed when the encoder is done.
	Finish() <-chan Chunk
	// Abort stops the session and releases its resources. It is safe to
	// call at any time, more than once, and after Finish.
	Abort()
}

// Chunk is a piece of encoded output, or the error that ended the stream
type Chunk struct {
	Data []byte
	Err  error
}

// Offscreen is a drawable bitmap owned by one capture
type Offscreen interface {
	scene.Surface
	Image() *image.RGBA
	Release()
}

// SurfaceFactory allocates the offscreen surface of a capture
type SurfaceFactory func(width, height int) (Offscreen, error)

// Output is a finished recording
type Output struct {
	Data       []byte
	MIME       string
	Extension  string
	Frames     int
	DurationMs int
}
