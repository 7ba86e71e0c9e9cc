package renderer

import (
	"image/color"
	"math"

	"github.com/ivlev/sketchstory/internal/geometry"
)

type glyphPart struct {
	path  *geometry.Path
	color color.NRGBA
}

// handGlyph is a hand holding a marker, drawn pointing along +X in its own
// coordinates. Parts are filled in order.
var handGlyph = []glyphPart{
	{ // hand
		path:  geometry.MustParse("M -2 -6 H 10 Q 16 -6 16 0 V 4 Q 16 10 10 10 H -2 Q -8 10 -8 4 V 0 Q -8 -6 -2 -6 Z"),
		color: color.NRGBA{0xf3, 0xd8, 0xb3, 0xff},
	},
	{ // marker body
		path:  geometry.MustParse("M 13 -2 H 35 Q 38 -2 38 1 Q 38 4 35 4 H 13 Q 10 4 10 1 Q 10 -2 13 -2 Z"),
		color: color.NRGBA{0x22, 0x22, 0x22, 0xff},
	},
	{ // nib
		path:  geometry.MustParse("M 38 -2 L 48 0 L 38 2 Z"),
		color: color.NRGBA{0x22, 0x22, 0x22, 0xff},
	},
}

// glyph origin relative to the pen position
const glyphOffsetX, glyphOffsetY = -10.0, -8.0

// glyphToBoard places a glyph point for a pen at (x, y) moving along angle
func glyphToBoard(p geometry.Point, x, y, angle float64) geometry.Point {
	u, v := p.X+glyphOffsetX, p.Y+glyphOffsetY
	sin, cos := math.Sincos(angle)
	return geometry.Point{
		X: x + u*cos - v*sin,
		Y: y + u*sin + v*cos,
	}
}
