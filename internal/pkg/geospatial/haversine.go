// Package geospatial holds the small amount of spherical geometry the planner needs.
package geospatial

import "math"

const earthRadiusKm = 6371.0

// HaversineKm calculates the great-circle distance in kilometres between two points.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Bounds is a lat/lon rectangle.
type Bounds struct {
	MinLat, MinLon, MaxLat, MaxLon float64
}

// DaNang covers the city and its rural district (Hoa Vang, Ba Na Hills, Hai Van Pass).
var DaNang = Bounds{MinLat: 15.85, MinLon: 107.75, MaxLat: 16.35, MaxLon: 108.40}

// Contains reports whether the point lies inside b, edges included.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
