package astro

// Star represents a cataloged star with position and brightness.
type Star struct {
	Name   string  // Common name (e.g., "Sirius", "Vega")
	RAdeg  float64 // Right Ascension in degrees (J2000)
	DecDeg float64 // Declination in degrees (J2000)
	Mag    float64 // Apparent visual magnitude (lower = brighter)
}

// StarCatalog holds a collection of stars used for field overlays.
type StarCatalog struct {
	Stars []Star
}

// DefaultStarCatalog returns a small catalog of bright stars (mag < 3).
// Coordinates are J2000, from the Yale Bright Star Catalog.
func DefaultStarCatalog() StarCatalog {
	return StarCatalog{Stars: brightStars}
}

// Within returns the stars no farther than radius degrees from (ra, dec)
// and no fainter than magLimit.
func (c StarCatalog) Within(ra, dec, radius, magLimit float64) []Star {
	var out []Star
	for _, s := range c.Stars {
		if s.Mag > magLimit {
			continue
		}
		if AngularSeparation(ra, dec, s.RAdeg, s.DecDeg) <= radius {
			out = append(out, s)
		}
	}
	return out
}

// Coordinates splits the catalog into parallel RA, Dec and magnitude slices,
// the layout the projection functions take.
func Coordinates(stars []Star) (ras, decs, mags []float64) {
	ras = make([]float64, len(stars))
	decs = make([]float64, len(stars))
	mags = make([]float64, len(stars))
	for i, s := range stars {
		ras[i] = s.RAdeg
		decs[i] = s.DecDeg
		mags[i] = s.Mag
	}
	return ras, decs, mags
}

var brightStars = []Star{
	{"Sirius", 101.287, -16.716, -1.46},
	{"Canopus", 95.988, -52.696, -0.74},
	{"Arcturus", 213.915, 19.182, -0.05},
	{"Vega", 279.235, 38.784, 0.03},
	{"Capella", 79.172, 45.998, 0.08},
	{"Rigel", 78.634, -8.202, 0.13},
	{"Procyon", 114.826, 5.225, 0.34},
	{"Achernar", 24.429, -57.237, 0.46},
	{"Betelgeuse", 88.793, 7.407, 0.50},
	{"Hadar", 210.956, -60.373, 0.61},
	{"Altair", 297.696, 8.868, 0.76},
	{"Acrux", 186.650, -63.099, 0.76},
	{"Aldebaran", 68.980, 16.509, 0.85},
	{"Antares", 247.352, -26.432, 0.96},
	{"Spica", 201.298, -11.161, 0.97},
	{"Pollux", 116.329, 28.026, 1.14},
	{"Fomalhaut", 344.413, -29.622, 1.16},
	{"Deneb", 310.358, 45.280, 1.25},
	{"Mimosa", 191.930, -59.689, 1.25},
	{"Regulus", 152.093, 11.967, 1.35},
	{"Adhara", 104.656, -28.972, 1.50},
	{"Castor", 113.650, 31.889, 1.58},
	{"Shaula", 263.402, -37.104, 1.63},
	{"Bellatrix", 81.283, 6.350, 1.64},
	{"Elnath", 81.573, 28.608, 1.65},
	{"Alnilam", 84.053, -1.202, 1.69},
	{"Alnitak", 85.190, -1.943, 1.77},
	{"Alioth", 193.507, 55.960, 1.77},
	{"Dubhe", 165.932, 61.751, 1.79},
	{"Mirfak", 51.081, 49.861, 1.79},
	{"Alkaid", 206.885, 49.313, 1.86},
	{"Menkalinan", 89.882, 44.948, 1.90},
	{"Alhena", 99.428, 16.399, 1.93},
	{"Polaris", 37.954, 89.264, 2.02},
	{"Hamal", 31.793, 23.463, 2.00},
	{"Mizar", 200.981, 54.925, 2.04},
	{"Alpheratz", 2.097, 29.091, 2.06},
	{"Kochab", 222.676, 74.156, 2.08},
	{"Rasalhague", 263.734, 12.560, 2.08},
	{"Algol", 47.042, 40.957, 2.12},
	{"Denebola", 177.265, 14.572, 2.13},
	{"Alphecca", 233.672, 26.715, 2.23},
	{"Sadr", 305.557, 40.257, 2.23},
	{"Eltanin", 269.152, 51.489, 2.23},
	{"Schedar", 10.127, 56.537, 2.23},
	{"Caph", 2.295, 59.150, 2.27},
	{"Merak", 165.460, 56.382, 2.37},
	{"Enif", 326.046, 9.875, 2.39},
	{"Phecda", 178.458, 53.695, 2.44},
	{"Scheat", 345.944, 28.083, 2.42},
	{"Alderamin", 319.645, 62.586, 2.51},
	{"Markab", 346.190, 15.205, 2.49},
	{"Navi", 14.177, 60.717, 2.47},
	{"Aljanah", 311.553, 33.970, 2.48},
	{"Tarazed", 296.565, 10.613, 2.72},
	{"Alcyone", 56.871, 24.105, 2.87},
}
