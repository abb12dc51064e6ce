// Package projection maps between detector pixels and the sky for a fitted
// camera model: pixel to horizontal and equatorial coordinates, and
// equatorial coordinates back to pixels.
//
// The camera is fixed to the ground, so a pixel always sees the same
// azimuth and altitude. Its right ascension therefore depends on the time of
// the observation while the field center at the reference time is fixed by
// the model.
package projection

import (
	"fmt"
	"math"
	"time"

	"github.com/litescript/ls-astrometry/internal/astro"
	"github.com/litescript/ls-astrometry/internal/photometry"
	"github.com/litescript/ls-astrometry/internal/platepar"
	"github.com/soniakeys/unit"
)

// Input-shape errors. They are the same values the platepar bulk functions
// return, so errors.Is works regardless of which layer rejected the input.
var (
	ErrLengthMismatch = platepar.ErrLengthMismatch
	ErrEmptyInput     = platepar.ErrEmptyInput
)

// Detection is a single measured point on the sensor.
type Detection struct {
	Time  time.Time `json:"time"`
	X     float64   `json:"x"`
	Y     float64   `json:"y"`
	Level float64   `json:"level"`
}

// SkyPoint is a calibrated measurement.
type SkyPoint struct {
	JD  float64 `json:"jd"`
	RA  float64 `json:"ra"`  // degrees [0, 360)
	Dec float64 `json:"dec"` // degrees
	Az  float64 `json:"az"`  // degrees [0, 360), from North through East
	Alt float64 `json:"alt"` // degrees
	Mag float64 `json:"mag"`
}

// CorrectedJD returns the Julian date of t with the model's UT correction
// removed.
func CorrectedJD(m platepar.CameraModel, t time.Time) float64 {
	return astro.JulianDate(t) - m.UTCorr/24
}

// reference returns the RA/Dec a pixel would have at the model's reference
// time, from a polar reprojection of the rectified offset about the
// reference pointing.
func reference(m platepar.CameraModel, x, y float64) (ra, dec float64) {
	ix, iy := m.Rectify(x, y)

	r := degToRad(math.Hypot(ix, iy))
	theta := degToRad(90 - m.PosAngle + radToDeg(math.Atan2(iy, ix)))

	sr, cr := math.Sincos(r)
	st, ct := math.Sincos(theta)
	sdc, cdc := math.Sincos(degToRad(m.Dec))

	d := math.Asin(sdc*cr + cdc*sr*ct)
	dra := math.Atan2(st*sr, cdc*cr-sdc*sr*ct)

	return astro.NormalizeDeg(m.RA - radToDeg(dra)), radToDeg(d)
}

// PixelToAltAzPoint returns the azimuth and altitude seen by pixel (x, y).
func PixelToAltAzPoint(m platepar.CameraModel, x, y float64) (az, alt float64) {
	ra, dec := reference(m, x, y)
	ha := astro.WrapDeg180(m.Ho + m.Lon - ra)
	return astro.HourAngleToHorizontal(ha, dec, m.Lat)
}

// PixelToRADec returns the equatorial and horizontal coordinates of pixel
// (x, y) at Julian date jd.
func PixelToRADec(m platepar.CameraModel, jd, x, y float64) (ra, dec, az, alt float64) {
	az, alt = PixelToAltAzPoint(m, x, y)
	ra, dec = astro.HorizontalToEquatorial(jd, m.Lon, m.Lat, az, alt)
	return ra, dec, az, alt
}

// PixelToAltAz maps pixels to azimuth and altitude.
func PixelToAltAz(m platepar.CameraModel, xs, ys []float64) (az, alt []float64, err error) {
	if err := checkLengths(len(xs), len(ys)); err != nil {
		return nil, nil, fmt.Errorf("pixel to alt/az: %w", err)
	}

	az = make([]float64, len(xs))
	alt = make([]float64, len(xs))
	for i := range xs {
		az[i], alt[i] = PixelToAltAzPoint(m, xs[i], ys[i])
	}
	return az, alt, nil
}

// PixelToSky calibrates detections given as parallel arrays. Each point's
// coordinates are evaluated at its own (UT corrected) Julian date and its
// magnitude is derived from its level with the model's photometric line.
func PixelToSky(m platepar.CameraModel, times []time.Time, xs, ys, levels []float64) ([]SkyPoint, error) {
	if err := checkLengths(len(times), len(xs), len(ys), len(levels)); err != nil {
		return nil, fmt.Errorf("pixel to sky: %w", err)
	}

	mags := photometry.LevelsToMagnitude(levels, m.Mag0, m.MagLev)

	points := make([]SkyPoint, len(xs))
	for i := range xs {
		jd := CorrectedJD(m, times[i])
		ra, dec, az, alt := PixelToRADec(m, jd, xs[i], ys[i])
		points[i] = SkyPoint{JD: jd, RA: ra, Dec: dec, Az: az, Alt: alt, Mag: mags[i]}
	}
	return points, nil
}

// Calibrate is PixelToSky over a slice of detections.
func Calibrate(m platepar.CameraModel, dets []Detection) ([]SkyPoint, error) {
	times := make([]time.Time, len(dets))
	xs := make([]float64, len(dets))
	ys := make([]float64, len(dets))
	levels := make([]float64, len(dets))
	for i, d := range dets {
		times[i], xs[i], ys[i], levels[i] = d.Time, d.X, d.Y, d.Level
	}
	return PixelToSky(m, times, xs, ys, levels)
}

// SkyToPixel projects RA/Dec positions onto the sensor at Julian date jd.
// jd is the uncorrected date of the observation, in the same convention as
// the timestamps PixelToSky takes; the model's UT correction is removed here.
func SkyToPixel(m platepar.CameraModel, ras, decs []float64, jd float64) (xs, ys []float64, err error) {
	if err := checkLengths(len(ras), len(decs)); err != nil {
		return nil, nil, fmt.Errorf("sky to pixel: %w", err)
	}

	fc := newFieldCenter(m, jd)

	xs = make([]float64, len(ras))
	ys = make([]float64, len(ras))
	for i := range ras {
		xs[i], ys[i] = fc.project(ras[i], decs[i])
	}
	return xs, ys, nil
}

// SkyToPixelPoint projects a single RA/Dec position; see SkyToPixel.
func SkyToPixelPoint(m platepar.CameraModel, ra, dec, jd float64) (x, y float64) {
	return newFieldCenter(m, jd).project(ra, dec)
}

// fieldCenter is the equatorial position of the optical axis at one instant.
type fieldCenter struct {
	m       platepar.CameraModel
	ra, dec float64
}

// newFieldCenter locates the optical axis at jd. The camera is fixed to the
// ground, so the axis keeps its hour angle and declination and only its RA
// follows sidereal time. Going through azimuth and altitude instead loses the
// axis RA when it points at a celestial pole.
func newFieldCenter(m platepar.CameraModel, jd float64) fieldCenter {
	jd -= m.UTCorr / 24
	ra := m.RA + astro.GreenwichSiderealTime(jd) - astro.GreenwichSiderealTime(m.JD)
	return fieldCenter{m: m, ra: astro.NormalizeDeg(ra), dec: m.Dec}
}

func (fc fieldCenter) project(ra, dec float64) (x, y float64) {
	r := astro.AngularSeparation(fc.ra, fc.dec, ra, dec)

	sd, cd := math.Sincos(degToRad(dec))
	sdc, cdc := math.Sincos(degToRad(fc.dec))
	sda, cda := math.Sincos(degToRad(ra - fc.ra))

	bearing := radToDeg(math.Atan2(-cd*sda, cdc*sd-sdc*cd*cda))
	theta := degToRad(bearing + fc.m.PosAngle - 90)

	st, ct := math.Sincos(theta)
	return fc.m.Distort(r*ct*fc.m.FScale, r*st*fc.m.FScale)
}

func checkLengths(n ...int) error {
	for _, v := range n[1:] {
		if v != n[0] {
			return fmt.Errorf("%w: %v", ErrLengthMismatch, n)
		}
	}
	if n[0] == 0 {
		return ErrEmptyInput
	}
	return nil
}

func degToRad(d float64) float64 { return unit.AngleFromDeg(d).Rad() }
func radToDeg(r float64) float64 { return unit.Angle(r).Deg() }
