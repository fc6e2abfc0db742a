package geospatial

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-polyline"
)

var (
	// ErrEmptyPolyline is returned for an empty encoded string.
	ErrEmptyPolyline = errors.New("encoded polyline is empty")

	// ErrInvalidCoordinate is returned when a decoded vertex is out of range.
	ErrInvalidCoordinate = errors.New("decoded polyline contains invalid coordinates")
)

// DecodePolyline decodes a Google encoded polyline (precision 5) into points.
// Points use orb's (lon, lat) order.
func DecodePolyline(encoded string) ([]orb.Point, error) {
	if encoded == "" {
		return nil, ErrEmptyPolyline
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}

	points := make([]orb.Point, len(coords))
	for i, c := range coords {
		lat, lon := c[0], c[1]
		if !ValidCoordinate(lat, lon) {
			return nil, fmt.Errorf("%w: vertex %d (%.5f, %.5f)", ErrInvalidCoordinate, i, lat, lon)
		}
		points[i] = orb.Point{lon, lat}
	}
	return points, nil
}

// EncodePolyline encodes points (lon, lat order) as a precision-5 polyline.
func EncodePolyline(points []orb.Point) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat(), p.Lon()}
	}
	return string(polyline.EncodeCoords(coords))
}

// ValidCoordinate reports whether lat/lon fall inside WGS 84 ranges.
func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
