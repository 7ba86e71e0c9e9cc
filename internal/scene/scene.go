// Package scene computes what the board looks like at a given elapsed time.
//
// Render is a pure function of elapsed milliseconds: calling it twice with
// the same value yields the same frame, and it never advances any clock.
// Live playback and capture both drive the same Renderer type and differ
// only in where elapsed time comes from and where frames go.
package scene

import (
	"fmt"
	"image/color"
	"math"

	"github.com/ivlev/sketchstory/internal/geometry"
	"github.com/ivlev/sketchstory/internal/schedule"
	"github.com/ivlev/sketchstory/internal/story"
)

// FadeMs is the fade-in window of text steps
const FadeMs = 320

// cursorLookahead is the arc length used to orient the cursor
const cursorLookahead = 1.0

// Renderer renders frames of one storyboard. It owns its schedule and
// geometry cache and is safe for concurrent use once built.
type Renderer struct {
	steps    []story.Step
	schedule *schedule.Schedule
	paths    *geometry.Cache
	colors   []color.NRGBA
	geomErr  error
}

// New validates the steps and precomputes their schedule and geometry.
// Malformed path data is not fatal; see GeometryErr.
func New(steps []story.Step) (*Renderer, error) {
	steps = story.Clone(steps)
	if err := story.Validate(steps); err != nil {
		return nil, err
	}
	sched, err := schedule.Build(steps)
	if err != nil {
		return nil, err
	}
	paths, geomErr := geometry.NewCache(steps)

	colors := make([]color.NRGBA, len(steps))
	for i, s := range steps {
		if s.Kind != story.KindPath {
			continue
		}
		c, err := story.ParseColor(s.Stroke)
		if err != nil {
			return nil, fmt.Errorf("step %q: %w", s.ID, err)
		}
		r, g, b := c.RGB255()
		colors[i] = color.NRGBA{r, g, b, 0xff}
	}

	return &Renderer{
		steps:    steps,
		schedule: sched,
		paths:    paths,
		colors:   colors,
		geomErr:  geomErr,
	}, nil
}

// GeometryErr returns the joined path data errors found while building the
// geometry cache, or nil. Affected steps render as degenerate paths.
func (r *Renderer) GeometryErr() error { return r.geomErr }

// Schedule returns the timeline
func (r *Renderer) Schedule() *schedule.Schedule { return r.schedule }

// TotalMs is the end of the timeline
func (r *Renderer) TotalMs() int { return r.schedule.TotalMs() }

// Steps returns the renderer's own copy of the steps
func (r *Renderer) Steps() []story.Step { return r.steps }

// Render computes the frame at elapsedMs.
func (r *Renderer) Render(elapsedMs float64) Frame {
	f := Frame{ElapsedMs: elapsedMs}
	n := r.schedule.Started(elapsedMs)
	if n == 0 {
		return f
	}
	f.Ops = make([]Op, 0, n)

	for i := 0; i < n; i++ {
		e := r.schedule.At(i)
		step := r.steps[e.Index]
		p := e.Progress(elapsedMs)

		switch step.Kind {
		case story.KindPath:
			path, ok := r.paths.Get(step.ID)
			if !ok {
				continue
			}
			op, cur := r.strokeOp(step, e.Index, path, p)
			f.Ops = append(f.Ops, op)
			if cur.Active {
				f.Cursor = cur
			}
		case story.KindText:
			f.Ops = append(f.Ops, textOp(step, e, elapsedMs))
		}
	}
	return f
}

func (r *Renderer) strokeOp(step story.Step, idx int, path *geometry.Path, progress float64) (StrokeOp, Cursor) {
	total := path.Total()
	op := StrokeOp{
		ID:    step.ID,
		Color: r.colors[idx],
		Width: step.StrokeWidth,
		Total: total,
	}
	if progress >= 1 || total == 0 {
		op.Complete = true
		op.Revealed = total
		op.Lines = path.Polylines()
		return op, Cursor{}
	}

	l := progress * total
	op.Revealed = l
	op.Lines = path.Reveal(l)
	return op, cursorAt(step.ID, path, l)
}

func cursorAt(id string, path *geometry.Path, l float64) Cursor {
	p, tangent := path.PointAndTangentAtLength(l)
	q, _ := path.PointAndTangentAtLength(math.Min(l+cursorLookahead, path.Total()))
	angle := tangent
	if dx, dy := q.X-p.X, q.Y-p.Y; dx != 0 || dy != 0 {
		angle = math.Atan2(dy, dx)
	}
	return Cursor{Active: true, StepID: id, X: p.X, Y: p.Y, Angle: angle}
}

func textOp(step story.Step, e schedule.Entry, elapsedMs float64) TextOp {
	return TextOp{
		ID:       step.ID,
		X:        step.X,
		Y:        step.Y,
		Content:  step.Content,
		FontSize: step.FontSize,
		Anchor:   step.TextAnchor(),
		Color:    TextInk,
		Opacity:  TextOpacity(elapsedMs-float64(e.Start), e.Duration()),
	}
}

// TextOpacity is the fade-in alpha of a text step localMs after it started.
// The fade lasts FadeMs or the step's duration, whichever is shorter.
func TextOpacity(localMs float64, durationMs int) float64 {
	window := math.Min(FadeMs, float64(durationMs))
	if window <= 0 {
		if localMs >= 0 {
			return 1
		}
		return 0
	}
	return math.Max(0, math.Min(1, localMs/window))
}
