// Package platepar holds the fitted camera model ("platepar") and its
// lens-distortion polynomials.
package platepar

import (
	"errors"
	"fmt"
	"math"

	"github.com/litescript/ls-astrometry/internal/astro"
)

// DefaultMagSlope is the photometric slope fixed by the definition of
// magnitude.
const DefaultMagSlope = -2.5

// Errors returned by model validation and the bulk distortion functions.
var (
	ErrInvalidModel   = errors.New("invalid camera model")
	ErrLengthMismatch = errors.New("input arrays differ in length")
	ErrEmptyInput     = errors.New("input arrays are empty")
)

// CameraModel is the fitted parameter set describing a camera's station,
// pointing, scale and lens distortion. It is passed by value and never
// mutated by the functions that consume it.
type CameraModel struct {
	// Station
	Lat  float64 `yaml:"lat" json:"lat"`   // degrees, +N
	Lon  float64 `yaml:"lon" json:"lon"`   // degrees, +E
	Elev float64 `yaml:"elev" json:"elev"` // meters

	// Reference pointing
	RA       float64 `yaml:"ra" json:"ra"`               // degrees J2000, [0, 360)
	Dec      float64 `yaml:"dec" json:"dec"`             // degrees J2000, [-90, 90]
	JD       float64 `yaml:"jd" json:"jd"`               // reference Julian date
	Ho       float64 `yaml:"ho" json:"ho"`               // reference hour angle (deg)
	PosAngle float64 `yaml:"pos_angle" json:"pos_angle"` // degrees

	// Image geometry
	XRes   int     `yaml:"x_res" json:"x_res"`
	YRes   int     `yaml:"y_res" json:"y_res"`
	FScale float64 `yaml:"f_scale" json:"f_scale"` // px/deg

	// Distortion
	XPolyFwd Poly `yaml:"x_poly_fwd" json:"x_poly_fwd"`
	YPolyFwd Poly `yaml:"y_poly_fwd" json:"y_poly_fwd"`
	XPolyRev Poly `yaml:"x_poly_rev" json:"x_poly_rev"`
	YPolyRev Poly `yaml:"y_poly_rev" json:"y_poly_rev"`

	// Photometry
	Mag0         float64 `yaml:"mag_0" json:"mag_0"`
	MagLev       float64 `yaml:"mag_lev" json:"mag_lev"`
	MagLevStdDev float64 `yaml:"mag_lev_stddev" json:"mag_lev_stddev"`
	Gamma        float64 `yaml:"gamma" json:"gamma"`

	// UTCorr is the offset of timestamps from UT in hours.
	UTCorr float64 `yaml:"ut_corr" json:"ut_corr"`
}

// Validate checks the structural invariants of the model.
func (m CameraModel) Validate() error {
	switch {
	case m.XRes <= 0 || m.YRes <= 0:
		return fmt.Errorf("%w: resolution %dx%d must be positive", ErrInvalidModel, m.XRes, m.YRes)
	case !(m.FScale > 0) || math.IsInf(m.FScale, 0):
		return fmt.Errorf("%w: image scale %v must be positive", ErrInvalidModel, m.FScale)
	case !(m.RA >= 0 && m.RA < 360):
		return fmt.Errorf("%w: RA %v outside [0, 360)", ErrInvalidModel, m.RA)
	case !(m.Dec >= -90 && m.Dec <= 90):
		return fmt.Errorf("%w: Dec %v outside [-90, 90]", ErrInvalidModel, m.Dec)
	case !(m.Lat >= -90 && m.Lat <= 90):
		return fmt.Errorf("%w: latitude %v outside [-90, 90]", ErrInvalidModel, m.Lat)
	}

	polys := map[string]Poly{
		"x_poly_fwd": m.XPolyFwd,
		"y_poly_fwd": m.YPolyFwd,
		"x_poly_rev": m.XPolyRev,
		"y_poly_rev": m.YPolyRev,
	}
	for name, p := range polys {
		if !p.finite() {
			return fmt.Errorf("%w: %s has non-finite coefficients", ErrInvalidModel, name)
		}
	}
	return nil
}

// WithPosAngle returns a copy of the model with the position angle replaced.
func (m CameraModel) WithPosAngle(p float64) CameraModel {
	m.PosAngle = p
	return m
}

// WithScale returns a copy of the model with the image scale replaced.
func (m CameraModel) WithScale(f float64) CameraModel {
	m.FScale = f
	return m
}

// WithReferenceTime returns a copy of the model referenced to jd, with the
// reference hour angle recomputed for that instant.
func (m CameraModel) WithReferenceTime(jd float64) CameraModel {
	m.JD = jd
	m.Ho = ReferenceHourAngle(jd)
	return m
}

// ReferenceHourAngle returns the Greenwich sidereal angle at jd, the value a
// model referenced to jd carries in Ho.
func ReferenceHourAngle(jd float64) float64 {
	return astro.GreenwichSiderealTime(jd)
}

// Center returns the pixel coordinates of the image center.
func (m CameraModel) Center() (x, y float64) {
	return float64(m.XRes) / 2, float64(m.YRes) / 2
}

// Demo returns a plausible all-sky meteor camera: a 1280x720 sensor at
// 15 px/deg looking north-east at 45° altitude from southern Ontario,
// with mild radial distortion.
func Demo() CameraModel {
	const (
		lat = 43.19
		lon = -81.32
		jd  = 2459580.5 // 2022-01-01 00:00 UTC
	)
	ra, dec := astro.HorizontalToEquatorial(jd, lon, lat, 60, 45)

	fwdX := Poly{0.5, 1e-3}
	fwdX[10] = 1e-5
	fwdY := Poly{-0.3, 0, 1e-3}
	fwdY[10] = 1e-5

	m := CameraModel{
		Lat:      lat,
		Lon:      lon,
		Elev:     324,
		RA:       ra,
		Dec:      dec,
		PosAngle: 35,
		XRes:     1280,
		YRes:     720,
		FScale:   15,
		XPolyFwd: fwdX,
		YPolyFwd: fwdY,
		XPolyRev: fwdX,
		YPolyRev: fwdY,
		Mag0:     DefaultMagSlope,
		MagLev:   16.5,
	}
	return m.WithReferenceTime(jd)
}
