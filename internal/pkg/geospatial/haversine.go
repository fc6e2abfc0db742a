package geospatial

import (
	"math"

	"github.com/paulmach/orb"
)

const (
	earthRadiusKm   = 6371.0
	metersPerDegree = 111320.0
)

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c * 1000 // meters
}

// BoundingBox returns the box around a point covering radiusMeters in every direction.
// The longitude span is widened by the cosine of the latitude.
func BoundingBox(lat, lon, radiusMeters float64) orb.Bound {
	latDelta := radiusMeters / metersPerDegree
	lonDelta := radiusMeters / (metersPerDegree * math.Cos(toRad(lat)))

	return orb.Bound{
		Min: orb.Point{lon - lonDelta, lat - latDelta},
		Max: orb.Point{lon + lonDelta, lat + latDelta},
	}
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
