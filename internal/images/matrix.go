package images

import (
	"errors"
	"math"

	"golang.org/x/image/math/f64"
)

var errSingularMatrix = errors.New("pattern matrix is not invertible")

// Matrices are row-major [a b c; d e f] acting on column vectors:
// x' = a*x + b*y + c, y' = d*x + e*y + f.

func scaleMatrix(sx, sy float64) f64.Aff3 {
	return f64.Aff3{sx, 0, 0, 0, sy, 0}
}

func rotationMatrix(radians float64) f64.Aff3 {
	sin, cos := math.Sincos(radians)
	return f64.Aff3{cos, -sin, 0, sin, cos, 0}
}

// mulMatrix returns a*b, the transform that applies b first and then a.
func mulMatrix(a, b f64.Aff3) f64.Aff3 {
	return f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}
}

func invertMatrix(m f64.Aff3) (f64.Aff3, bool) {
	det := m[0]*m[4] - m[1]*m[3]
	if math.Abs(det) < 1e-12 {
		return f64.Aff3{}, false
	}
	inv := 1 / det
	a := m[4] * inv
	b := -m[1] * inv
	d := -m[3] * inv
	e := m[0] * inv
	return f64.Aff3{
		a, b, -(a*m[2] + b*m[5]),
		d, e, -(d*m[2] + e*m[5]),
	}, true
}

// applyMatrix maps the point (x, y) through m.
func applyMatrix(m f64.Aff3, x, y float64) (float64, float64) {
	return m[0]*x + m[1]*y + m[2], m[3]*x + m[4]*y + m[5]
}
