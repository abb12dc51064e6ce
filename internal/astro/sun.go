package astro

import (
	"github.com/soniakeys/meeus/v3/solar"
)

// SunPosition returns the apparent RA/Dec of the Sun at Julian date jd.
func SunPosition(jd float64) (ra, dec float64) {
	α, δ := solar.ApparentEquatorial(jd)
	return NormalizeDeg(α.Angle().Deg()), δ.Deg()
}

// SunAltitude returns the Sun's altitude for an observer at (lon, lat).
func SunAltitude(jd, lon, lat float64) float64 {
	ra, dec := SunPosition(jd)
	_, alt := EquatorialToHorizontal(jd, lon, lat, ra, dec)
	return alt
}

// Twilight classifies sky darkness by the Sun's altitude.
type Twilight int

const (
	Night        Twilight = iota // Sun below -18°
	Astronomical                 // -18° to -12°
	Nautical                     // -12° to -6°
	Civil                        // -6° to 0°
	Daylight
)

func (tw Twilight) String() string {
	switch tw {
	case Night:
		return "night"
	case Astronomical:
		return "astronomical twilight"
	case Nautical:
		return "nautical twilight"
	case Civil:
		return "civil twilight"
	default:
		return "daylight"
	}
}

// TwilightAt returns the darkness tier for a Sun altitude in degrees.
func TwilightAt(sunAlt float64) Twilight {
	switch {
	case sunAlt < -18:
		return Night
	case sunAlt < -12:
		return Astronomical
	case sunAlt < -6:
		return Nautical
	case sunAlt < 0:
		return Civil
	default:
		return Daylight
	}
}

// Usable reports whether stars are dark enough to calibrate against.
func (tw Twilight) Usable() bool {
	return tw <= Nautical
}
