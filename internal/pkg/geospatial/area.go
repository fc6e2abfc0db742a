package geospatial

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ErrUnsupportedGeometry is returned for geometries that cannot bound an area.
var ErrUnsupportedGeometry = errors.New("geometry is not a polygon or multipolygon")

// ToMultiPolygon normalises a polygonal geometry to a MultiPolygon.
func ToMultiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty polygon", ErrUnsupportedGeometry)
		}
		return orb.MultiPolygon{v}, nil
	case orb.MultiPolygon:
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: empty multipolygon", ErrUnsupportedGeometry)
		}
		return v, nil
	case nil:
		return nil, fmt.Errorf("%w: missing geometry", ErrUnsupportedGeometry)
	default:
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// ParseArea decodes a GeoJSON geometry object into a MultiPolygon.
func ParseArea(data []byte) (orb.MultiPolygon, error) {
	g, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson geometry: %w", err)
	}
	return ToMultiPolygon(g.Geometry())
}

// MarshalArea encodes a MultiPolygon as a GeoJSON geometry object.
func MarshalArea(mp orb.MultiPolygon) ([]byte, error) {
	return geojson.NewGeometry(mp).MarshalJSON()
}
