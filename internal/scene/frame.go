package scene

import (
	"image/color"

	"github.com/ivlev/sketchstory/internal/geometry"
	"github.com/ivlev/sketchstory/internal/story"
)

var (
	// Background is the board color every frame starts from
	Background = color.NRGBA{0xff, 0xff, 0xff, 0xff}
	// TextInk is the fill of text steps
	TextInk = color.NRGBA{0x11, 0x11, 0x11, 0xff}
)

// Surface is anything a frame can be drawn onto: an offscreen bitmap, a
// terminal canvas, a recorder.
type Surface interface {
	// Clear fills the surface with Background
	Clear()
	// StrokePolylines strokes open polylines with round caps and joins
	StrokePolylines(lines [][]geometry.Point, c color.NRGBA, width float64)
	// FillText draws a text op with its opacity and anchor applied
	FillText(t TextOp)
	// DrawCursor draws the hand-and-marker glyph with its tip at (x, y)
	DrawCursor(x, y, angle float64)
}

// Op is one drawing operation of a frame
type Op interface {
	Draw(s Surface)
}

// StrokeOp draws the revealed part of a path step
type StrokeOp struct {
	ID       string
	Color    color.NRGBA
	Width    float64
	Lines    [][]geometry.Point
	Revealed float64 // arc length drawn so far
	Total    float64
	Complete bool
}

func (op StrokeOp) Draw(s Surface) {
	if len(op.Lines) == 0 {
		return
	}
	s.StrokePolylines(op.Lines, op.Color, op.Width)
}

// TextOp draws a text step
type TextOp struct {
	ID       string
	X, Y     float64
	Content  string
	FontSize float64
	Anchor   story.Anchor
	Color    color.NRGBA
	Opacity  float64 // 0..1
}

func (op TextOp) Draw(s Surface) {
	if op.Opacity <= 0 || op.Content == "" {
		return
	}
	s.FillText(op)
}

// Cursor is the pen position of the path currently being drawn
type Cursor struct {
	Active bool
	StepID string
	X, Y   float64
	Angle  float64 // radians, direction of travel
}

// Frame is the complete description of the board at one instant
type Frame struct {
	ElapsedMs float64
	Ops       []Op
	Cursor    Cursor
}

// Draw clears s and replays the frame onto it, cursor last
func (f Frame) Draw(s Surface) {
	s.Clear()
	for _, op := range f.Ops {
		op.Draw(s)
	}
	if f.Cursor.Active {
		s.DrawCursor(f.Cursor.X, f.Cursor.Y, f.Cursor.Angle)
	}
}

// Strokes returns the stroke ops of the frame
func (f Frame) Strokes() []StrokeOp {
	var out []StrokeOp
	for _, op := range f.Ops {
		if s, ok := op.(StrokeOp); ok {
			out = append(out, s)
		}
	}
	return out
}

// Texts returns the text ops of the frame
func (f Frame) Texts() []TextOp {
	var out []TextOp
	for _, op := range f.Ops {
		if t, ok := op.(TextOp); ok {
			out = append(out, t)
		}
	}
	return out
}
