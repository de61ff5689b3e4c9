package models

import "strconv"

// Coordinate represents a geographical point in decimal degrees (WGS 84).
// Wherever a coordinate is serialized as an ordered pair, longitude comes
// first. Sources that deliver latitude-first pairs must swap at the boundary.
type Coordinate struct {
	Longitude float64 `json:"lon"` // Longitude of the geographical point.
	Latitude  float64 `json:"lat"` // Latitude of the geographical point.
}

// Array returns the coordinate as a longitude-first pair, the form used by
// GeoJSON and by the routing backend's URL syntax.
func (c Coordinate) Array() [2]float64 {
	return [2]float64{c.Longitude, c.Latitude}
}

// String formats the coordinate as "lon,lat" with five decimal places,
// suitable for request URLs and as a display fallback when geocoding fails.
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.Longitude, 'f', 5, 64) + "," + strconv.FormatFloat(c.Latitude, 'f', 5, 64)
}

// BoundingBox represents a geographic bounding box used to bias place search.
type BoundingBox struct {
	MinLon float64 `json:"min_lon"`
	MinLat float64 `json:"min_lat"`
	MaxLon float64 `json:"max_lon"`
	MaxLat float64 `json:"max_lat"`
}
