package enrich

import "math"

// earthRadiusMiles is the mean Earth radius used for distances.
const earthRadiusMiles = 3959.0

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64
	Lng float64
}

// Valid reports whether both components are set. A zero component is
// treated as missing, matching how the Places API omits coordinates.
func (p LatLng) Valid() bool {
	return p.Lat != 0 && p.Lng != 0 && !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng)
}

// Haversine returns the great-circle distance between a and b in miles.
func Haversine(a, b LatLng) float64 {
	lat1, lat2 := radians(a.Lat), radians(b.Lat)
	dLat := lat2 - lat1
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusMiles * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// DistanceMiles returns the distance from p to ref rounded to 0.1 mile, and
// false when p or ref has no usable coordinates.
func DistanceMiles(p, ref LatLng) (float64, bool) {
	if !p.Valid() || !ref.Valid() {
		return 0, false
	}
	return math.Round(Haversine(p, ref)*10) / 10, true
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
