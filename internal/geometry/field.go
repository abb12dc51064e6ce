// Package geometry derives field-level quantities from a camera model: the
// angular size of the field, its rotation with respect to the horizon and to
// the equatorial frame, and the position angle that yields a wanted rotation.
package geometry

import (
	"math"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/platepar"
	"github.com/litescript/ls-astrometry/internal/projection"
	"github.com/soniakeys/unit"
)

// rotationStep is the horizontal pixel offset used to sample the field
// direction at the image center.
const rotationStep = 10

// FieldOfView returns the horizontal and vertical extent of the field in
// degrees, measured between the midpoints of opposite image edges at the
// model's reference time.
func FieldOfView(m platepar.CameraModel) (h, v float64) {
	xr, yr := float64(m.XRes), float64(m.YRes)

	lra, ldec, _, _ := projection.PixelToRADec(m, m.JD, 0, yr/2)
	rra, rdec, _, _ := projection.PixelToRADec(m, m.JD, xr, yr/2)
	tra, tdec, _, _ := projection.PixelToRADec(m, m.JD, xr/2, 0)
	bra, bdec, _, _ := projection.PixelToRADec(m, m.JD, xr/2, yr)

	h = astro.AngularSeparation(lra, ldec, rra, rdec)
	v = astro.AngularSeparation(tra, tdec, bra, bdec)
	return h, v
}

// FOVRadius returns the half-diagonal-like radius hypot(h, v) of the field,
// a generous bound for selecting catalog stars that may be visible.
func FOVRadius(m platepar.CameraModel) float64 {
	h, v := FieldOfView(m)
	return math.Hypot(h, v)
}

// RotationWrtHorizon returns the angle of the image X axis measured from the
// horizon, in degrees (-180, 180].
func RotationWrtHorizon(m platepar.CameraModel) float64 {
	return rotationWrtHorizonAt(m, m.PosAngle)
}

// RotationWrtStandard returns the angle of the image X axis in the
// equatorial frame at the reference time, in degrees [0, 360).
func RotationWrtStandard(m platepar.CameraModel) float64 {
	return rotationWrtStandardAt(m, m.PosAngle)
}

func rotationWrtHorizonAt(m platepar.CameraModel, posAngle float64) float64 {
	m = m.WithPosAngle(posAngle)
	cx, cy := m.Center()

	azc, altc := projection.PixelToAltAzPoint(m, cx, cy)
	azr, altr := projection.PixelToAltAzPoint(m, cx+rotationStep, cy)

	daz := astro.WrapDeg180(azr - azc)
	rot := unit.Angle(math.Atan2(degToRad(altr-altc), degToRad(daz))).Deg()
	return astro.WrapDeg180(rot)
}

func rotationWrtStandardAt(m platepar.CameraModel, posAngle float64) float64 {
	m = m.WithPosAngle(posAngle)
	cx, cy := m.Center()

	rac, decc, _, _ := projection.PixelToRADec(m, m.JD, cx, cy)
	rar, decr, _, _ := projection.PixelToRADec(m, m.JD, cx+rotationStep, cy)

	dra := astro.WrapDeg180(rac - rar)
	rot := unit.Angle(math.Atan2(degToRad(decc-decr), degToRad(dra))).Deg()
	return astro.NormalizeDeg(rot)
}

func degToRad(d float64) float64 {
	return unit.AngleFromDeg(d).Rad()
}
