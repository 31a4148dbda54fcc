package domain

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether the point carries no usable coordinate.
func (p GeoPoint) IsZero() bool {
	return p.Lat == 0 || p.Lon == 0
}
