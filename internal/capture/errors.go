package capture

import (
	"errors"
	"fmt"
)

var (
	// ErrCaptureUnsupported means the environment lacks an offscreen surface
	// or a usable video encoder.
	ErrCaptureUnsupported = errors.New("capture unsupported")

	// ErrEncoderFailure is matched by every *EncoderError.
	ErrEncoderFailure = errors.New("encoder failure")

	// ErrFlushTimeout is returned when the encoder does not deliver its final
	// data within Options.FlushTimeout.
	ErrFlushTimeout = errors.New("encoder flush timed out")

	// ErrBusy is returned when Start is called while a capture is running.
	ErrBusy = errors.New("capture already in progress")
)

// EncoderError reports a failure of the video sink. Frame is the index of
// the frame being submitted, or -1 when the failure is not tied to a frame.
type EncoderError struct {
	Op    string // open, submit, flush, assemble
	Frame int
	Err   error
}

func (e *EncoderError) Error() string {
	if e.Frame >= 0 {
		return fmt.Sprintf("encoder %s (frame %d): %v", e.Op, e.Frame, e.Err)
	}
	return fmt.Sprintf("encoder %s: %v", e.Op, e.Err)
}

func (e *EncoderError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrEncoderFailure) hold for any EncoderError.
func (e *EncoderError) Is(target error) bool { return target == ErrEncoderFailure }

func encoderErr(op string, frame int, err error) error {
	return &EncoderError{Op: op, Frame: frame, Err: err}
}

func unsupported(err error) error {
	return fmt.Errorf("%w: %w", ErrCaptureUnsupported, err)
}
