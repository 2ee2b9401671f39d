package images

import (
	"image"

	"golang.org/x/image/draw"
)

// Surface is a decoded raster image with its intrinsic size. Surfaces are
// never mutated after decoding, so a cached surface may back several
// LoadedImage values at once.
type Surface struct {
	img *image.RGBA
}

// NewSurface copies img into an RGBA buffer anchored at the origin.
func NewSurface(img image.Image) *Surface {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return &Surface{img: rgba}
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return &Surface{img: rgba}
}

// Width is the intrinsic width in pixels.
func (s *Surface) Width() int {
	return s.img.Bounds().Dx()
}

// Height is the intrinsic height in pixels.
func (s *Surface) Height() int {
	return s.img.Bounds().Dy()
}

// Image returns the pixel buffer. Callers must not modify it.
func (s *Surface) Image() *image.RGBA {
	return s.img
}
