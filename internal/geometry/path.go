// Package geometry parses SVG path data into a flattened polyline indexed by
// arc length.
//
// A Path answers "where is the pen after travelling l units" in O(log n) and
// returns the revealed part of the stroke for any l in [0, Total]. Curves and
// arcs are flattened on construction; the result is immutable and can be
// shared freely between goroutines.
package geometry

import (
	"math"
	"sort"
)

// Point is a position in user space
type Point struct {
	X, Y float64
}

func (p Point) sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

func lerpPoint(a, b Point, t float64) Point {
	return Point{a.X + (b.X-a.X)*t, a.Y + (b.Y-a.Y)*t}
}

// sample is one vertex of the flattened path. draw is false for pen-up
// moves, in which case len equals the previous sample's len.
type sample struct {
	p    Point
	len  float64
	draw bool
}

// Path is a flattened path with cumulative arc lengths
type Path struct {
	samples []sample
	total   float64
	lines   [][]Point
}

// Total is the arc length of all drawn segments. Pen-up moves add nothing.
func (p *Path) Total() float64 { return p.total }

// Empty reports whether the path has no drawable length
func (p *Path) Empty() bool { return p.total == 0 }

// Start returns the pen position at length 0
func (p *Path) Start() Point {
	pt, _ := p.PointAndTangentAtLength(0)
	return pt
}

// End returns the pen position at Total
func (p *Path) End() Point {
	pt, _ := p.PointAndTangentAtLength(p.total)
	return pt
}

// PointAndTangentAtLength returns the position after travelling l along the
// path and the direction of travel in radians. l is clamped to [0, Total].
// For a path without length the first point (or the origin) and angle 0 are
// returned.
func (p *Path) PointAndTangentAtLength(l float64) (Point, float64) {
	n := len(p.samples)
	if n == 0 {
		return Point{}, 0
	}
	if p.total == 0 || math.IsNaN(l) {
		return p.samples[0].p, 0
	}
	l = math.Max(0, math.Min(l, p.total))

	i := sort.Search(n, func(i int) bool { return p.samples[i].len >= l })
	// skip pen-up moves and zero-length segments
	for i < n && !p.segment(i) {
		i++
	}
	if i >= n {
		return p.samples[n-1].p, 0
	}

	a, b := p.samples[i-1], p.samples[i]
	t := (l - a.len) / (b.len - a.len)
	d := b.p.sub(a.p)
	return lerpPoint(a.p, b.p, t), math.Atan2(d.Y, d.X)
}

// segment reports whether sample i ends a drawn segment of positive length
func (p *Path) segment(i int) bool {
	return i > 0 && p.samples[i].draw && p.samples[i].len > p.samples[i-1].len
}

// Polylines returns every drawn subpath. Callers must not modify the result.
func (p *Path) Polylines() [][]Point {
	return p.lines
}

// Reveal returns the drawn subpaths covering [0, l], cutting the final
// segment at l. The returned slices are fresh except when l >= Total, in
// which case Polylines is returned.
func (p *Path) Reveal(l float64) [][]Point {
	if l >= p.total {
		return p.lines
	}
	if l <= 0 || math.IsNaN(l) {
		return nil
	}

	var out [][]Point
	var cur []Point
	flush := func() {
		if len(cur) >= 2 {
			out = append(out, cur)
		}
		cur = nil
	}

	for i, s := range p.samples {
		if !s.draw {
			flush()
			cur = []Point{s.p}
			continue
		}
		if s.len <= l {
			cur = appendDistinct(cur, s.p)
			continue
		}
		prev := p.samples[i-1]
		t := (l - prev.len) / (s.len - prev.len)
		cur = appendDistinct(cur, lerpPoint(prev.p, s.p, t))
		break
	}
	flush()
	return out
}

// Bounds returns the bounding box of all vertices
func (p *Path) Bounds() (min, max Point) {
	if len(p.samples) == 0 {
		return Point{}, Point{}
	}
	min, max = p.samples[0].p, p.samples[0].p
	for _, s := range p.samples[1:] {
		min.X = math.Min(min.X, s.p.X)
		min.Y = math.Min(min.Y, s.p.Y)
		max.X = math.Max(max.X, s.p.X)
		max.Y = math.Max(max.Y, s.p.Y)
	}
	return min, max
}

func appendDistinct(pts []Point, p Point) []Point {
	if n := len(pts); n > 0 && pts[n-1] == p {
		return pts
	}
	return append(pts, p)
}

// builder accumulates samples while the path data is interpreted
type builder struct {
	samples []sample
	total   float64
	cur     Point
}

func (b *builder) moveTo(p Point) {
	// consecutive moves collapse into the last one
	if n := len(b.samples); n > 0 && !b.samples[n-1].draw {
		b.samples[n-1].p = p
	} else {
		b.samples = append(b.samples, sample{p: p, len: b.total})
	}
	b.cur = p
}

func (b *builder) lineTo(p Point) {
	if len(b.samples) == 0 {
		b.moveTo(b.cur)
	}
	b.total += b.cur.dist(p)
	b.samples = append(b.samples, sample{p: p, len: b.total, draw: true})
	b.cur = p
}

func (b *builder) path() *Path {
	// a trailing move draws nothing
	samples := b.samples
	for len(samples) > 1 && !samples[len(samples)-1].draw {
		samples = samples[:len(samples)-1]
	}
	p := &Path{samples: samples, total: b.total}
	p.lines = p.collectLines()
	return p
}

func (p *Path) collectLines() [][]Point {
	var out [][]Point
	var cur []Point
	for _, s := range p.samples {
		if !s.draw {
			if len(cur) >= 2 {
				out = append(out, cur)
			}
			cur = []Point{s.p}
			continue
		}
		cur = appendDistinct(cur, s.p)
	}
	if len(cur) >= 2 {
		out = append(out, cur)
	}
	return out
}
