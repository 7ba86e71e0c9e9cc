package scene

import (
	"image/color"

	"github.com/ivlev/sketchstory/internal/geometry"
)

// Call is one recorded Surface call
type Call struct {
	Method string // Clear, StrokePolylines, FillText, DrawCursor
	Lines  [][]geometry.Point
	Color  color.NRGBA
	Width  float64
	Text   TextOp
	X, Y   float64
	Angle  float64
}

// Recorder is a Surface that remembers every call made to it. It draws
// nothing and exists for tests: the scene tests assert on its calls and the
// capture tests use it as a fake offscreen surface.
type Recorder struct {
	Calls []Call
}

func (r *Recorder) Clear() {
	r.Calls = append(r.Calls, Call{Method: "Clear"})
}

func (r *Recorder) StrokePolylines(lines [][]geometry.Point, c color.NRGBA, width float64) {
	r.Calls = append(r.Calls, Call{Method: "StrokePolylines", Lines: lines, Color: c, Width: width})
}

func (r *Recorder) FillText(t TextOp) {
	r.Calls = append(r.Calls, Call{Method: "FillText", Text: t})
}

func (r *Recorder) DrawCursor(x, y, angle float64) {
	r.Calls = append(r.Calls, Call{Method: "DrawCursor", X: x, Y: y, Angle: angle})
}

// Methods returns the recorded method names in call order
func (r *Recorder) Methods() []string {
	out := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		out[i] = c.Method
	}
	return out
}

// Reset forgets all calls
func (r *Recorder) Reset() { r.Calls = r.Calls[:0] }
