// Package astro provides the time and sky-frame utilities used by the
// calibration engine: Julian dates, sidereal time and conversions between
// equatorial (RA/Dec) and horizontal (Az/Alt) coordinates.
//
// All angles are in degrees unless a name says otherwise.
package astro

import (
	"math"

	"github.com/soniakeys/unit"
)

// zenithNudge replaces an altitude of exactly 90° before the hour angle is
// derived from it.
const zenithNudge = 89.9999

// EquatorialToHorizontal converts RA/Dec to azimuth and altitude for an
// observer at (lon, lat) at Julian date jd.
//
// Azimuth is measured from North through East and lies in [0, 360).
// The sine of the altitude is clamped to [-1, 1] before the arcsine, so
// rounding overshoot never produces NaN.
func EquatorialToHorizontal(jd, lon, lat, ra, dec float64) (az, alt float64) {
	lst := LocalSiderealTime(jd, lon)

	ha := degToRad(WrapDeg180(lst - ra))
	phi := degToRad(lat)
	d := degToRad(dec)

	az = math.Pi + math.Atan2(math.Sin(ha), math.Cos(ha)*math.Sin(phi)-math.Tan(d)*math.Cos(phi))

	sinAlt := math.Sin(phi)*math.Sin(d) + math.Cos(phi)*math.Cos(d)*math.Cos(ha)
	alt = math.Asin(clamp(sinAlt, -1, 1))

	return NormalizeDeg(radToDeg(az)), radToDeg(alt)
}

// HorizontalToEquatorial is the inverse of EquatorialToHorizontal. It returns
// RA in [0, 360) and Dec in [-90, 90].
//
// An altitude of exactly 90° is replaced by 89.9999° since the hour angle is
// undefined at the zenith.
func HorizontalToEquatorial(jd, lon, lat, az, alt float64) (ra, dec float64) {
	if alt == 90 {
		alt = zenithNudge
	}

	a := degToRad(az)
	h := degToRad(alt)
	sl, cl := math.Sincos(degToRad(lat))

	x := -math.Sin(a) * math.Cos(h)
	y := -math.Cos(a)*sl*math.Cos(h) + math.Sin(h)*cl
	ha := radToDeg(math.Atan2(x, y))

	ra = NormalizeDeg(GreenwichSiderealTime(jd) + lon - ha)
	dec = radToDeg(math.Asin(clamp(sl*math.Sin(h)+cl*math.Cos(h)*math.Cos(a), -1, 1)))

	return ra, dec
}

// HourAngleToHorizontal converts a local hour angle and declination to
// azimuth and altitude for an observer at latitude lat.
func HourAngleToHorizontal(ha, dec, lat float64) (az, alt float64) {
	sh, ch := math.Sincos(degToRad(ha))
	sd, cd := math.Sincos(degToRad(dec))
	sl, cl := math.Sincos(degToRad(lat))

	x := -ch*cd*sl + sd*cl
	y := -sh * cd
	z := ch*cd*cl + sd*sl

	az = NormalizeDeg(radToDeg(math.Atan2(y, x)))
	alt = radToDeg(math.Atan2(z, math.Hypot(x, y)))
	return az, alt
}

// AngularSeparation returns the great-circle distance between two points
// given in RA/Dec (or any longitude/latitude pair), in degrees.
func AngularSeparation(ra1, dec1, ra2, dec2 float64) float64 {
	sd1, cd1 := math.Sincos(degToRad(dec1))
	sd2, cd2 := math.Sincos(degToRad(dec2))
	sdra, cdra := math.Sincos(degToRad(ra2 - ra1))

	num := math.Hypot(cd2*sdra, cd1*sd2-sd1*cd2*cdra)
	den := sd1*sd2 + cd1*cd2*cdra
	return radToDeg(math.Atan2(num, den))
}

// NormalizeDeg wraps an angle to [0, 360).
func NormalizeDeg(a float64) float64 {
	a = unit.PMod(a, 360)
	// PMod can round a tiny negative input up to exactly 360.
	if a >= 360 {
		a -= 360
	}
	return a
}

// WrapDeg180 wraps an angle to (-180, 180].
func WrapDeg180(a float64) float64 {
	a = NormalizeDeg(a)
	if a > 180 {
		a -= 360
	}
	return a
}

// AngleDistance returns the absolute difference of two angles taken mod 360,
// i.e. a value in [0, 360).
func AngleDistance(a, b float64) float64 {
	return math.Abs(NormalizeDeg(a) - NormalizeDeg(b))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func degToRad(deg float64) float64 {
	return unit.AngleFromDeg(deg).Rad()
}

func radToDeg(rad float64) float64 {
	return unit.Angle(rad).Deg()
}
