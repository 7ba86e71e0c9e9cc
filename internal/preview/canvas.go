package preview

import (
	"strings"

	"github.com/ivlev/sketchstory/internal/renderer"
)

// ramp maps ink coverage to characters, lightest first
var ramp = []rune(" .:-=+*#%@")

// Canvas is the terminal drawing surface: a scaled-down raster shown as
// text, one character per pixel column and two pixel rows.
type Canvas struct {
	*renderer.Raster
}

func NewCanvas(width, height int, scale float64) (*Canvas, error) {
	r, err := renderer.NewRaster(width, height, renderer.WithScale(scale))
	if err != nil {
		return nil, err
	}
	return &Canvas{Raster: r}, nil
}

// String renders the current bitmap as lines of text
func (c *Canvas) String() string {
	img := c.Image()
	b := img.Bounds()
	var sb strings.Builder
	sb.Grow((b.Dx() + 1) * (b.Dy() + 1) / 2)

	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		if y > b.Min.Y {
			sb.WriteByte('\n')
		}
		for x := b.Min.X; x < b.Max.X; x++ {
			ink := inkAt(c, x, y)
			if y+1 < b.Max.Y {
				ink = (ink + inkAt(c, x, y+1)) / 2
			}
			sb.WriteRune(ramp[int(ink*float64(len(ramp)-1)+0.5)])
		}
	}
	return sb.String()
}

// inkAt is 1 - luminance of a pixel, so dark strokes on white are ink
func inkAt(c *Canvas, x, y int) float64 {
	img := c.Image()
	i := img.PixOffset(x, y)
	p := img.Pix[i : i+3 : i+3]
	lum := (0.299*float64(p[0]) + 0.587*float64(p[1]) + 0.114*float64(p[2])) / 255
	return 1 - lum
}
