// Package renderer draws scene frames onto an offscreen RGBA bitmap.
//
// Strokes, text and the cursor glyph are rasterised with golang.org/x/image:
// vector for anti-aliased coverage, opentype with the Go Regular face for
// text. Bitmaps come from the shared system image pool and go back to it on
// Release.
package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/ivlev/sketchstory/internal/geometry"
	"github.com/ivlev/sketchstory/internal/scene"
	"github.com/ivlev/sketchstory/internal/story"
	"github.com/ivlev/sketchstory/internal/system"
)

// Option configures a Raster
type Option func(*Raster)

// WithScale maps user units to pixels, e.g. 0.5 for a half-size preview.
// Width and height passed to NewRaster stay in user units.
func WithScale(s float64) Option {
	return func(r *Raster) {
		if s > 0 {
			r.scale = s
		}
	}
}

// Raster is a scene.Surface backed by an *image.RGBA
type Raster struct {
	img   *image.RGBA
	scale float64
	z     vector.Rasterizer
	faces map[float64]font.Face
}

var _ scene.Surface = (*Raster)(nil)

// NewRaster allocates a width x height (user units) bitmap from the pool
func NewRaster(width, height int, opts ...Option) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid surface size %dx%d", width, height)
	}
	if _, err := goRegular(); err != nil {
		return nil, err
	}

	r := &Raster{scale: 1, faces: make(map[float64]font.Face)}
	for _, opt := range opts {
		opt(r)
	}

	w := int(math.Round(float64(width) * r.scale))
	h := int(math.Round(float64(height) * r.scale))
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("surface size %dx%d at scale %g is empty", width, height, r.scale)
	}
	r.img = system.GetImage(image.Rect(0, 0, w, h))
	r.Clear()
	return r, nil
}

// Image returns the backing bitmap. It is only valid until Release.
func (r *Raster) Image() *image.RGBA { return r.img }

// Release returns the bitmap to the pool and closes cached font faces.
// The raster must not be used afterwards. Release is idempotent.
func (r *Raster) Release() {
	for size, f := range r.faces {
		f.Close()
		delete(r.faces, size)
	}
	if r.img != nil {
		system.PutImage(r.img)
		r.img = nil
	}
}

func (r *Raster) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(scene.Background), image.Point{}, draw.Src)
}

// StrokePolylines strokes each polyline as segment quads joined by discs,
// which gives round caps and joins.
func (r *Raster) StrokePolylines(lines [][]geometry.Point, c color.NRGBA, width float64) {
	hw := width * r.scale / 2
	var shapes shapeSet
	for _, line := range lines {
		pts := r.toPixels(line)
		for i, p := range pts {
			shapes.disc(p, hw)
			if i > 0 {
				shapes.segment(pts[i-1], p, hw)
			}
		}
	}
	r.fill(&shapes, c)
}

func (r *Raster) FillText(t scene.TextOp) {
	face, err := r.face(t.FontSize * r.scale)
	if err != nil {
		return
	}
	c := t.Color
	c.A = uint8(math.Round(float64(c.A) * clamp01(t.Opacity)))
	if c.A == 0 {
		return
	}

	x := t.X * r.scale
	adv := float64(font.MeasureString(face, t.Content)) / 64
	switch t.Anchor {
	case story.AnchorMiddle:
		x -= adv / 2
	case story.AnchorEnd:
		x -= adv
	}

	d := font.Drawer{
		Dst:  r.img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.Int26_6(x * 64), Y: fixed.Int26_6(t.Y * r.scale * 64)},
	}
	d.DrawString(t.Content)
}

func (r *Raster) DrawCursor(x, y, angle float64) {
	for _, part := range handGlyph {
		var shapes shapeSet
		for _, poly := range part.path.Polylines() {
			pts := make([]geometry.Point, len(poly))
			for i, p := range poly {
				pts[i] = r.toPixel(glyphToBoard(p, x, y, angle))
			}
			shapes.polygon(pts)
		}
		r.fill(&shapes, part.color)
	}
}

func (r *Raster) face(size float64) (font.Face, error) {
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := newFace(size)
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

func (r *Raster) toPixel(p geometry.Point) geometry.Point {
	return geometry.Point{X: p.X * r.scale, Y: p.Y * r.scale}
}

func (r *Raster) toPixels(pts []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(pts))
	for i, p := range pts {
		out[i] = r.toPixel(p)
	}
	return out
}

// fill rasterises the shape set clipped to its bounding box
func (r *Raster) fill(s *shapeSet, c color.NRGBA) {
	if s.empty() {
		return
	}
	clip := s.bounds().Intersect(r.img.Bounds())
	if clip.Empty() {
		return
	}
	r.z.Reset(clip.Dx(), clip.Dy())
	r.z.DrawOp = draw.Over
	s.emit(&r.z, clip.Min)
	r.z.Draw(r.img, clip, image.NewUniform(c), image.Point{})
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
