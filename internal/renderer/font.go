package renderer

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	regularOnce sync.Once
	regular     *opentype.Font
	regularErr  error
)

func goRegular() (*opentype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = opentype.Parse(goregular.TTF)
		if regularErr != nil {
			regularErr = fmt.Errorf("parse go regular: %w", regularErr)
		}
	})
	return regular, regularErr
}

// newFace returns a face of the given pixel size
func newFace(size float64) (font.Face, error) {
	f, err := goRegular()
	if err != nil {
		return nil, err
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
