package images

import (
	"math"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// rotationEpsilon is the smallest angle, in degrees, treated as a rotation.
const rotationEpsilon = 1e-6

// identityMatrix leaves coordinates unchanged.
var identityMatrix = f64.Aff3{1, 0, 0, 0, 1, 0}

// Pattern pairs a surface with the affine matrix that maps output (user)
// coordinates into surface coordinates.
type Pattern struct {
	surface *Surface
	matrix  f64.Aff3
	// Filter resamples the surface when painting. Defaults to the best
	// available kernel.
	Filter draw.Interpolator
}

// NewPattern builds the pattern for drawing surface at width x height,
// rotated by thetaDegrees. Zero width or height keeps that intrinsic
// dimension. The scale is applied first and the rotation by -theta after
// it; swapping the two changes the result when both are in effect.
func NewPattern(surface *Surface, width, height int, thetaDegrees float64) *Pattern {
	if surface == nil {
		return nil
	}
	sx, sy := 1.0, 1.0
	if width > 0 && width != surface.Width() {
		sx = float64(surface.Width()) / float64(width)
	}
	if height > 0 && height != surface.Height() {
		sy = float64(surface.Height()) / float64(height)
	}

	m := scaleMatrix(sx, sy)
	if math.Abs(thetaDegrees) > rotationEpsilon {
		m = mulMatrix(rotationMatrix(-thetaDegrees*math.Pi/180), m)
	}
	return &Pattern{
		surface: surface,
		matrix:  m,
		Filter:  draw.CatmullRom,
	}
}

// Matrix returns the output-to-surface transform.
func (p *Pattern) Matrix() f64.Aff3 {
	return p.matrix
}

// Render paints the pattern onto dst with its origin at dst's origin.
func (p *Pattern) Render(dst draw.Image) error {
	s2d, ok := invertMatrix(p.matrix)
	if !ok {
		return errSingularMatrix
	}
	filter := p.Filter
	if filter == nil {
		filter = draw.CatmullRom
	}
	src := p.surface.Image()
	filter.Transform(dst, s2d, src, src.Bounds(), draw.Over, nil)
	return nil
}

// OutputDimensions returns the size the image occupies once drawn: the
// requested dimension when set, the intrinsic one otherwise. A nil surface
// yields 0, 0.
func OutputDimensions(surface *Surface, width, height int) (int, int) {
	if surface == nil {
		return 0, 0
	}
	if width <= 0 {
		width = surface.Width()
	}
	if height <= 0 {
		height = surface.Height()
	}
	return width, height
}
