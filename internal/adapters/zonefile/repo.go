// Package zonefile reads risk zones from a GeoJSON FeatureCollection on disk.
package zonefile

import (
	"context"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/pkg/geospatial"
	"github.com/samirrijal/safepath/internal/pkg/logging"
)

// Repo implements ports.RiskZoneRepository over a GeoJSON file.
type Repo struct {
	path string
}

// NewRepo creates a new Repo reading from path.
func NewRepo(path string) *Repo {
	return &Repo{path: path}
}

// List reads and parses the file on every call.
func (r *Repo) List(ctx context.Context) ([]domain.RiskZone, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("read zone file: %w", err)
	}
	zones, skipped, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", r.path, err)
	}
	if skipped > 0 {
		logging.FromContext(ctx).WarnContext(ctx, "skipped unusable zone features", "file", r.path, "skipped", skipped)
	}
	return zones, nil
}

// Parse decodes a FeatureCollection into risk zones. Features without a
// polygonal geometry or with a non-numeric crime_rate are skipped and
// counted. crime_rate defaults to 0.5 when absent; other properties of the
// wrong type read as empty.
func Parse(data []byte) ([]domain.RiskZone, int, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, 0, err
	}

	zones := make([]domain.RiskZone, 0, len(fc.Features))
	skipped := 0
	for i, f := range fc.Features {
		area, err := geospatial.ToMultiPolygon(f.Geometry)
		if err != nil {
			skipped++
			continue
		}
		rate, ok := crimeRate(f.Properties)
		if !ok {
			skipped++
			continue
		}
		zones = append(zones, domain.RiskZone{
			ID:        featureID(f, i),
			Name:      stringProp(f.Properties, "name"),
			CrimeRate: rate,
			Lighting:  stringProp(f.Properties, "lighting"),
			Area:      area,
		})
	}
	return zones, skipped, nil
}

func crimeRate(props geojson.Properties) (float64, bool) {
	v, ok := props["crime_rate"]
	if !ok || v == nil {
		return domain.DefaultCrimeRate, true
	}
	rate, ok := v.(float64)
	return rate, ok
}

func stringProp(props geojson.Properties, key string) string {
	s, _ := props[key].(string)
	return s
}

func featureID(f *geojson.Feature, i int) string {
	if id := stringProp(f.Properties, "id"); id != "" {
		return id
	}
	switch v := f.ID.(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("zone-%d", i)
}
