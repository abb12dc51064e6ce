package platepar

import (
	"fmt"
	"math"
)

// Poly holds the 12 coefficients of a distortion polynomial, in the order:
// constant, X, Y, X², XY, Y², X³, X²Y, XY², Y³ and two radial terms.
//
// The radial pair is axis dependent: for the X axis it is (X·r, Y·r), for
// the Y axis (Y·r, X·r), with r = √(X²+Y²).
type Poly [12]float64

func (p Poly) cubic(x, y float64) float64 {
	return p[0] +
		p[1]*x +
		p[2]*y +
		p[3]*x*x +
		p[4]*x*y +
		p[5]*y*y +
		p[6]*x*x*x +
		p[7]*x*x*y +
		p[8]*x*y*y +
		p[9]*y*y*y
}

// EvalX evaluates p as an X-axis correction at centered coordinates (x, y).
func (p Poly) EvalX(x, y float64) float64 {
	r := math.Sqrt(x*x + y*y)
	return p.cubic(x, y) + p[10]*x*r + p[11]*y*r
}

// EvalY evaluates p as a Y-axis correction at centered coordinates (x, y).
func (p Poly) EvalY(x, y float64) float64 {
	r := math.Sqrt(x*x + y*y)
	return p.cubic(x, y) + p[10]*y*r + p[11]*x*r
}

func (p Poly) finite() bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Rectify maps a detector pixel to the rectified image plane: the offset
// from the image center, corrected with the forward polynomials and divided
// by the image scale. The result is in degrees.
func (m CameraModel) Rectify(x, y float64) (ix, iy float64) {
	cx, cy := m.Center()
	dx := x - cx
	dy := y - cy

	ix = dx + m.XPolyFwd.EvalX(dx, dy)
	iy = dy + m.YPolyFwd.EvalY(dx, dy)

	return ix / m.FScale, iy / m.FScale
}

// Distort maps undistorted plane coordinates, already multiplied by the
// image scale (so in pixels relative to the center), back to detector
// pixels using the reverse polynomials.
//
// Distort(F·Rectify(x, y)) reproduces (x, y) only as well as the forward and
// reverse fits agree; it is not an exact inverse.
func (m CameraModel) Distort(px, py float64) (x, y float64) {
	cx, cy := m.Center()

	x = px - m.XPolyRev.EvalX(px, py) + cx
	y = py - m.YPolyRev.EvalY(px, py) + cy
	return x, y
}

// RectifyAll applies Rectify to every point.
func (m CameraModel) RectifyAll(xs, ys []float64) ([]float64, []float64, error) {
	if err := checkPair(xs, ys); err != nil {
		return nil, nil, fmt.Errorf("rectify: %w", err)
	}

	ix := make([]float64, len(xs))
	iy := make([]float64, len(xs))
	for i := range xs {
		ix[i], iy[i] = m.Rectify(xs[i], ys[i])
	}
	return ix, iy, nil
}

// DistortAll applies Distort to every point.
func (m CameraModel) DistortAll(pxs, pys []float64) ([]float64, []float64, error) {
	if err := checkPair(pxs, pys); err != nil {
		return nil, nil, fmt.Errorf("distort: %w", err)
	}

	xs := make([]float64, len(pxs))
	ys := make([]float64, len(pxs))
	for i := range pxs {
		xs[i], ys[i] = m.Distort(pxs[i], pys[i])
	}
	return xs, ys, nil
}

func checkPair(a, b []float64) error {
	if len(a) != len(b) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(a), len(b))
	}
	if len(a) == 0 {
		return ErrEmptyInput
	}
	return nil
}
