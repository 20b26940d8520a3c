package geo

import (
	"math"
)

const earthRadiusMeters = 6371000.0

// Haversine returns the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusMeters * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// BBoxAround returns a bounding box of radiusMeters around a point,
// clamped to valid coordinate ranges.
func BBoxAround(lat, lon, radiusMeters float64) (south, west, north, east float64) {
	dLat := radiusMeters / 111320.0
	dLon := dLat
	if cos := math.Cos(lat * math.Pi / 180); cos > 0.01 {
		dLon = dLat / cos
	}
	south = math.Max(lat-dLat, -90)
	north = math.Min(lat+dLat, 90)
	west = math.Max(lon-dLon, -180)
	east = math.Min(lon+dLon, 180)
	return
}
