package astro

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// J2000 is the Julian Date of the J2000.0 epoch.
const J2000 = 2451545.0

// JulianDate returns the Julian Date of t (converted to UTC).
func JulianDate(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// JDToTime converts a Julian Date back to a UTC time.
func JDToTime(jd float64) time.Time {
	return julian.JDToTime(jd).UTC()
}

// GreenwichSiderealTime returns the mean sidereal angle at Greenwich in
// degrees [0, 360), using the low-precision IAU 1982 polynomial:
//
//	280.46061837 + 360.98564736629·(JD-2451545) + 0.000387933·T² - T³/38710000
//
// where T is Julian centuries since J2000.
func GreenwichSiderealTime(jd float64) float64 {
	d := jd - J2000
	T := d / 36525.0

	gst := 280.46061837 +
		360.98564736629*d +
		0.000387933*T*T -
		T*T*T/38710000.0

	return NormalizeDeg(gst)
}

// LocalSiderealTime returns the local sidereal angle in degrees [0, 360) at
// east longitude lon.
func LocalSiderealTime(jd, lon float64) float64 {
	return NormalizeDeg(GreenwichSiderealTime(jd) + lon)
}
