package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivlev/sketchstory/internal/geometry"
	"github.com/ivlev/sketchstory/internal/scene"
	"github.com/ivlev/sketchstory/internal/story"
)

var red = color.NRGBA{0xff, 0, 0, 0xff}

func newRaster(t *testing.T, w, h int, opts ...Option) *Raster {
	t.Helper()
	r, err := NewRaster(w, h, opts...)
	require.NoError(t, err)
	t.Cleanup(r.Release)
	return r
}

func isWhite(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R == 0xff && c.G == 0xff && c.B == 0xff
}

func isRed(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R > 240 && c.G < 16 && c.B < 16
}

// ink returns the bounding box of all non-white pixels
func ink(img *image.RGBA) image.Rectangle {
	var box image.Rectangle
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if !isWhite(img, x, y) {
				box = box.Union(image.Rect(x, y, x+1, y+1))
			}
		}
	}
	return box
}

func TestNewRasterRejectsEmptySize(t *testing.T) {
	_, err := NewRaster(0, 10)
	assert.Error(t, err)
	_, err = NewRaster(10, 10, WithScale(0.01))
	assert.Error(t, err)
}

func TestClear(t *testing.T) {
	r := newRaster(t, 40, 30)
	r.StrokePolylines([][]geometry.Point{{{X: 0, Y: 15}, {X: 40, Y: 15}}}, red, 6)
	r.Clear()
	assert.True(t, ink(r.Image()).Empty())
}

func TestStrokeLine(t *testing.T) {
	r := newRaster(t, 100, 60)
	r.StrokePolylines([][]geometry.Point{{{X: 10, Y: 20}, {X: 90, Y: 20}}}, red, 4)
	img := r.Image()

	assert.True(t, isRed(img, 50, 19))
	assert.True(t, isRed(img, 50, 20))
	assert.True(t, isWhite(img, 50, 30))

	// round cap reaches past the end point
	assert.False(t, isWhite(img, 8, 20))
	assert.True(t, isWhite(img, 5, 20))
}

func TestStrokeOverlapDoesNotCancel(t *testing.T) {
	r := newRaster(t, 100, 100)
	r.StrokePolylines([][]geometry.Point{
		{{X: 10, Y: 50}, {X: 90, Y: 50}, {X: 10, Y: 50}},
		{{X: 50, Y: 10}, {X: 50, Y: 90}},
	}, red, 6)
	img := r.Image()

	assert.True(t, isRed(img, 30, 50))
	assert.True(t, isRed(img, 50, 50))
	assert.True(t, isRed(img, 50, 30))
}

func TestScale(t *testing.T) {
	r := newRaster(t, 100, 60, WithScale(0.5))
	assert.Equal(t, image.Rect(0, 0, 50, 30), r.Image().Bounds())

	r.StrokePolylines([][]geometry.Point{{{X: 20, Y: 40}, {X: 80, Y: 40}}}, red, 8)
	assert.True(t, isRed(r.Image(), 25, 20))
	assert.True(t, isWhite(r.Image(), 25, 5))
}

func TestDrawCursor(t *testing.T) {
	r := newRaster(t, 200, 200)
	r.DrawCursor(100, 100, 0)
	box := ink(r.Image())
	require.False(t, box.Empty())

	// with angle 0 the glyph spans x in [-18, 38] and y in [-14, 2] around the pen
	assert.True(t, box.Min.X >= 100-19 && box.Max.X <= 100+40, "box %v", box)
	assert.True(t, box.Min.Y >= 100-15 && box.Max.Y <= 100+4, "box %v", box)

	// hand color shows up
	c := r.Image().RGBAAt(92, 92)
	assert.InDelta(t, 0xf3, c.R, 2)
	assert.InDelta(t, 0xd8, c.G, 2)
	assert.InDelta(t, 0xb3, c.B, 2)
}

func TestFillText(t *testing.T) {
	r := newRaster(t, 300, 100)
	op := scene.TextOp{X: 150, Y: 60, Content: "Hello", FontSize: 32, Color: scene.TextInk, Opacity: 1, Anchor: story.AnchorMiddle}

	r.FillText(scene.TextOp{X: 150, Y: 60, Content: "Hello", FontSize: 32, Color: scene.TextInk, Opacity: 0})
	assert.True(t, ink(r.Image()).Empty())

	r.FillText(op)
	box := ink(r.Image())
	require.False(t, box.Empty())
	assert.Less(t, box.Min.X, 150)
	assert.Greater(t, box.Max.X, 150)
	assert.LessOrEqual(t, box.Max.Y, 60+8)

	r.Clear()
	op.Anchor = story.AnchorEnd
	r.FillText(op)
	assert.LessOrEqual(t, ink(r.Image()).Max.X, 152)
}

func TestReleaseIsIdempotent(t *testing.T) {
	r, err := NewRaster(10, 10)
	require.NoError(t, err)
	_, err = r.face(12)
	require.NoError(t, err)
	r.Release()
	assert.Nil(t, r.Image())
	assert.Empty(t, r.faces)
	r.Release()
}

func TestDrawsScene(t *testing.T) {
	sb := story.FromPrompt("a cat", 960, 540)
	sr, err := scene.New(sb.Steps)
	require.NoError(t, err)

	r := newRaster(t, sb.Width, sb.Height)
	sr.Render(0).Draw(r)
	assert.True(t, ink(r.Image()).Empty())

	sr.Render(float64(sr.TotalMs())).Draw(r)
	box := ink(r.Image())
	assert.False(t, box.Empty())

	// mid-stroke frames carry the cursor
	f := sr.Render(1000)
	require.True(t, f.Cursor.Active)
	f.Draw(r)
	assert.False(t, isWhite(r.Image(), int(f.Cursor.X)-8, int(f.Cursor.Y)-8))
}
