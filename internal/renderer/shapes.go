package renderer

import (
	"image"
	"math"

	"golang.org/x/image/vector"

	"github.com/ivlev/sketchstory/internal/geometry"
)

// kappa places cubic control points for a quarter circle
const kappa = 0.5522847498

type disc struct {
	c geometry.Point
	r float64
}

// shapeSet collects filled shapes that are rasterised in one pass.
// vector accumulates signed area, so every shape is emitted with the same
// winding; overlaps then saturate instead of cancelling.
type shapeSet struct {
	polys [][]geometry.Point
	discs []disc
	min   geometry.Point
	max   geometry.Point
	any   bool
}

func (s *shapeSet) empty() bool { return !s.any }

func (s *shapeSet) grow(p geometry.Point, pad float64) {
	lo := geometry.Point{X: p.X - pad, Y: p.Y - pad}
	hi := geometry.Point{X: p.X + pad, Y: p.Y + pad}
	if !s.any {
		s.min, s.max, s.any = lo, hi, true
		return
	}
	s.min.X = math.Min(s.min.X, lo.X)
	s.min.Y = math.Min(s.min.Y, lo.Y)
	s.max.X = math.Max(s.max.X, hi.X)
	s.max.Y = math.Max(s.max.Y, hi.Y)
}

func (s *shapeSet) polygon(pts []geometry.Point) {
	if len(pts) < 3 {
		return
	}
	if signedArea(pts) < 0 {
		rev := make([]geometry.Point, len(pts))
		for i, p := range pts {
			rev[len(pts)-1-i] = p
		}
		pts = rev
	}
	s.polys = append(s.polys, pts)
	for _, p := range pts {
		s.grow(p, 0)
	}
}

func (s *shapeSet) disc(c geometry.Point, r float64) {
	if r <= 0 {
		return
	}
	s.discs = append(s.discs, disc{c, r})
	s.grow(c, r)
}

// segment adds the rectangle of half width hw around a-b
func (s *shapeSet) segment(a, b geometry.Point, hw float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 || hw <= 0 {
		return
	}
	nx, ny := -dy/l*hw, dx/l*hw
	s.polygon([]geometry.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	})
}

// bounds is the pixel rectangle covering every shape
func (s *shapeSet) bounds() image.Rectangle {
	return image.Rect(
		int(math.Floor(s.min.X))-1, int(math.Floor(s.min.Y))-1,
		int(math.Ceil(s.max.X))+1, int(math.Ceil(s.max.Y))+1,
	)
}

// emit writes all shapes into z, translated so origin maps to (0, 0)
func (s *shapeSet) emit(z *vector.Rasterizer, origin image.Point) {
	ox, oy := float64(origin.X), float64(origin.Y)
	pt := func(x, y float64) (float32, float32) {
		return float32(x - ox), float32(y - oy)
	}

	for _, poly := range s.polys {
		z.MoveTo(pt(poly[0].X, poly[0].Y))
		for _, p := range poly[1:] {
			z.LineTo(pt(p.X, p.Y))
		}
		z.ClosePath()
	}

	for _, d := range s.discs {
		cx, cy, r := d.c.X, d.c.Y, d.r
		k := kappa * r
		z.MoveTo(pt(cx+r, cy))
		cubeTo(z, pt, cx+r, cy+k, cx+k, cy+r, cx, cy+r)
		cubeTo(z, pt, cx-k, cy+r, cx-r, cy+k, cx-r, cy)
		cubeTo(z, pt, cx-r, cy-k, cx-k, cy-r, cx, cy-r)
		cubeTo(z, pt, cx+k, cy-r, cx+r, cy-k, cx+r, cy)
		z.ClosePath()
	}
}

func cubeTo(z *vector.Rasterizer, pt func(x, y float64) (float32, float32), bx, by, cx, cy, dx, dy float64) {
	x1, y1 := pt(bx, by)
	x2, y2 := pt(cx, cy)
	x3, y3 := pt(dx, dy)
	z.CubeTo(x1, y1, x2, y2, x3, y3)
}

// signedArea is positive when pts wind the same way as emitted discs
func signedArea(pts []geometry.Point) float64 {
	a := 0.0
	for i, p := range pts {
		q := pts[(i+1)%len(pts)]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}
