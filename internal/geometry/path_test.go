package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/sketchstory/internal/story"
)

func assertPoint(t *testing.T, want, got Point, tol float64) {
	t.Helper()
	if math.Abs(want.X-got.X) > tol || math.Abs(want.Y-got.Y) > tol {
		t.Errorf("expected point %v, got %v (tol %g)", want, got, tol)
	}
}

func TestLine(t *testing.T) {
	p := MustParse("M0 0 L100 0")
	assert.Equal(t, 100.0, p.Total())

	pt, ang := p.PointAndTangentAtLength(50)
	assertPoint(t, Point{50, 0}, pt, 1e-9)
	assert.Equal(t, 0.0, ang)

	assertPoint(t, Point{0, 0}, p.Start(), 0)
	assertPoint(t, Point{100, 0}, p.End(), 0)

	pt, _ = p.PointAndTangentAtLength(-5)
	assertPoint(t, Point{0, 0}, pt, 0)
	pt, _ = p.PointAndTangentAtLength(500)
	assertPoint(t, Point{100, 0}, pt, 0)
}

func TestRectangleWithClose(t *testing.T) {
	p := MustParse("M 80 120 H 880 V 460 H 80 Z")
	assert.InDelta(t, 2280, p.Total(), 1e-9)
	assertPoint(t, Point{80, 120}, p.Start(), 0)
	assertPoint(t, Point{80, 120}, p.End(), 1e-9)

	pt, ang := p.PointAndTangentAtLength(970)
	assertPoint(t, Point{880, 290}, pt, 1e-9)
	assert.InDelta(t, math.Pi/2, ang, 1e-9)

	require.Len(t, p.Polylines(), 1)
	assert.Len(t, p.Polylines()[0], 5)
}

func TestRelativeCommands(t *testing.T) {
	p := MustParse("m10 10 l10 0 v10 h-10 z")
	assert.InDelta(t, 40, p.Total(), 1e-9)
	assertPoint(t, Point{10, 10}, p.Start(), 0)

	pt, _ := p.PointAndTangentAtLength(15)
	assertPoint(t, Point{20, 15}, pt, 1e-9)
}

func TestImplicitLineTo(t *testing.T) {
	p := MustParse("M0 0 10 0 10 10")
	assert.InDelta(t, 20, p.Total(), 1e-9)
	assertPoint(t, Point{10, 10}, p.End(), 0)
}

func TestPackedNumbers(t *testing.T) {
	p := MustParse("M10-20L.5.5")
	assertPoint(t, Point{10, -20}, p.Start(), 0)
	assertPoint(t, Point{0.5, 0.5}, p.End(), 0)
}

func TestCircleFromArcs(t *testing.T) {
	p := MustParse("M 230 230 A 70 70 0 1 0 370 230 A 70 70 0 1 0 230 230")
	want := 2 * math.Pi * 70
	assert.InEpsilon(t, want, p.Total(), 0.01)

	assertPoint(t, Point{230, 230}, p.Start(), 0)
	assertPoint(t, Point{230, 230}, p.End(), 1e-9)

	pt, _ := p.PointAndTangentAtLength(p.Total() / 2)
	assertPoint(t, Point{370, 230}, pt, 0.5)

	// quarter of the way round with sweep=0 passes below the center (y down)
	pt, _ = p.PointAndTangentAtLength(p.Total() / 4)
	assertPoint(t, Point{300, 300}, pt, 0.5)
}

func TestArcVariants(t *testing.T) {
	spaced := MustParse("M0 0 a 50 50 0 0 1 100 0")
	packed := MustParse("M0 0a50 50 0 01100 0")
	assert.InDelta(t, spaced.Total(), packed.Total(), 1e-9)
	assert.InEpsilon(t, math.Pi*50, packed.Total(), 0.01)
	assertPoint(t, Point{100, 0}, packed.End(), 1e-9)

	// radii too small are scaled up to reach the end point
	small := MustParse("M0 0 A 1 1 0 0 1 10 0")
	assert.InEpsilon(t, math.Pi*5, small.Total(), 0.01)

	// a zero radius degrades to a straight line
	flat := MustParse("M0 0 A 0 5 0 0 1 10 0")
	assert.InDelta(t, 10, flat.Total(), 1e-9)
}

func TestCubicAccuracy(t *testing.T) {
	straight := MustParse("M0 0 C 10 0, 20 0, 30 0")
	assert.InDelta(t, 30, straight.Total(), 1e-9)
	pt, _ := straight.PointAndTangentAtLength(15)
	assertPoint(t, Point{15, 0}, pt, 1e-9)

	c := MustParse("M 290 230 C 370 150, 520 400, 600 290")
	want := integrate(func(t float64) (float64, float64) {
		mt := 1 - t
		dx := 3*mt*mt*(370-290) + 6*mt*t*(520-370) + 3*t*t*(600-520)
		dy := 3*mt*mt*(150-230) + 6*mt*t*(400-150) + 3*t*t*(290-400)
		return dx, dy
	})
	assert.InEpsilon(t, want, c.Total(), 0.01)
	assertPoint(t, Point{600, 290}, c.End(), 1e-9)
}

func TestQuadAccuracy(t *testing.T) {
	q := MustParse("M0 0 Q 50 100 100 0")
	want := integrate(func(t float64) (float64, float64) {
		return 2*(1-t)*50 + 2*t*50, 2*(1-t)*100 + 2*t*(-100)
	})
	assert.InEpsilon(t, want, q.Total(), 0.01)
}

func TestSmoothCurvesReflect(t *testing.T) {
	s := MustParse("M0 0 C0 10 10 10 10 0 S 20 -10 20 0")
	assertPoint(t, Point{20, 0}, s.End(), 1e-9)
	pt, _ := s.PointAndTangentAtLength(s.Total() * 0.75)
	assert.Less(t, pt.Y, -5.0)

	q := MustParse("M0 0 Q 5 10 10 0 T 20 0")
	pt, _ = q.PointAndTangentAtLength(q.Total() * 0.75)
	assert.Less(t, pt.Y, -2.0)
}

func TestMonotonicTraversal(t *testing.T) {
	p := MustParse("M 230 230 A 70 70 0 1 0 370 230 A 70 70 0 1 0 230 230")
	const step = 0.5
	prev, _ := p.PointAndTangentAtLength(0)
	for l := step; l <= p.Total(); l += step {
		pt, _ := p.PointAndTangentAtLength(l)
		d := pt.dist(prev)
		if d > step+1e-6 {
			t.Fatalf("jump of %g at length %g", d, l)
		}
		prev = pt
	}
}

func TestSubpaths(t *testing.T) {
	p := MustParse("M0 0 L10 0 M20 0 L30 0")
	assert.InDelta(t, 20, p.Total(), 1e-9)
	require.Len(t, p.Polylines(), 2)

	pt, _ := p.PointAndTangentAtLength(10)
	assertPoint(t, Point{10, 0}, pt, 0)
	pt, _ = p.PointAndTangentAtLength(10.5)
	assertPoint(t, Point{20.5, 0}, pt, 1e-9)

	assert.Equal(t, [][]Point{{{0, 0}, {10, 0}}}, p.Reveal(10))
	assert.Equal(t, [][]Point{{{0, 0}, {10, 0}}, {{20, 0}, {25, 0}}}, p.Reveal(15))
}

func TestReveal(t *testing.T) {
	line := MustParse("M0 0 L100 0")
	assert.Nil(t, line.Reveal(0))
	assert.Equal(t, [][]Point{{{0, 0}, {25, 0}}}, line.Reveal(25))
	assert.Equal(t, line.Polylines(), line.Reveal(100))

	board := MustParse("M 80 120 H 880 V 460 H 80 Z")
	assert.Equal(t, [][]Point{{{80, 120}, {880, 120}, {880, 290}}}, board.Reveal(970))
}

func TestDegenerate(t *testing.T) {
	single := MustParse("M 5 5")
	assert.Equal(t, 0.0, single.Total())
	assert.True(t, single.Empty())
	pt, ang := single.PointAndTangentAtLength(3)
	assertPoint(t, Point{5, 5}, pt, 0)
	assert.Equal(t, 0.0, ang)
	assert.Empty(t, single.Polylines())
	assert.Nil(t, single.Reveal(1))

	empty, err := Parse("")
	require.NoError(t, err)
	assert.Equal(t, 0.0, empty.Total())
	pt, _ = empty.PointAndTangentAtLength(0)
	assertPoint(t, Point{}, pt, 0)
}

func TestMalformed(t *testing.T) {
	tests := []struct {
		name  string
		d     string
		total float64
	}{
		{"missing coordinate", "M0 0 L10 0 L 5", 10},
		{"no moveto", "L10 10", 0},
		{"unknown command", "M0 0 L10 0 X", 10},
		{"bad flag", "M0 0 A 5 5 0 2 0 10 0", 0},
		{"garbage", "hello", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.d)
			var se *SyntaxError
			require.True(t, errors.As(err, &se), "expected *SyntaxError, got %v", err)
			require.NotNil(t, p)
			assert.InDelta(t, tt.total, p.Total(), 1e-9)
		})
	}
}

func TestCache(t *testing.T) {
	steps := []story.Step{
		story.PathStep("ok", "M0 0 L10 0", "#111", 2, 100),
		story.TextStep("label", 0, 0, "x", 12, story.AnchorStart, 100),
		story.PathStep("broken", "M0 0 L", "#111", 2, 100),
	}

	c, err := NewCache(steps)
	require.Error(t, err)
	var se *SyntaxError
	assert.True(t, errors.As(err, &se))
	assert.Contains(t, err.Error(), `"broken"`)

	assert.Equal(t, 2, c.Len())
	p, ok := c.Get("ok")
	require.True(t, ok)
	assert.InDelta(t, 10, p.Total(), 1e-9)

	p, ok = c.Get("broken")
	require.True(t, ok)
	assert.True(t, p.Empty())

	_, ok = c.Get("label")
	assert.False(t, ok)
}

func TestBounds(t *testing.T) {
	min, max := MustParse("M 80 120 H 880 V 460 H 80 Z").Bounds()
	assertPoint(t, Point{80, 120}, min, 0)
	assertPoint(t, Point{880, 460}, max, 0)
}

// integrate returns the arc length of a curve given its derivative, using
// Simpson's rule on [0, 1].
func integrate(deriv func(t float64) (float64, float64)) float64 {
	const n = 10000
	f := func(t float64) float64 {
		dx, dy := deriv(t)
		return math.Hypot(dx, dy)
	}
	h := 1.0 / n
	sum := f(0) + f(1)
	for i := 1; i < n; i++ {
		w := 2.0
		if i%2 == 1 {
			w = 4
		}
		sum += w * f(float64(i)*h)
	}
	return sum * h / 3
}
