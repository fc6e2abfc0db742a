// Package safety scores pedestrian routes against risk zones and nearby landmarks.
package safety

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/safepath/internal/core/domain"
)

const (
	crimeRateWeight   = 20.0
	poorLightingNight = 25.0
	poorLightingDay   = 5.0
)

// ZoneIndex answers point-in-polygon queries over a fixed set of risk zones.
// It is immutable after construction and safe for concurrent use.
type ZoneIndex struct {
	zones  []domain.RiskZone
	bounds []orb.Bound
}

// NewZoneIndex builds an index over zones and fills in each zone's Bounds.
// Zones without polygons are dropped.
func NewZoneIndex(zones []domain.RiskZone) *ZoneIndex {
	idx := &ZoneIndex{
		zones:  make([]domain.RiskZone, 0, len(zones)),
		bounds: make([]orb.Bound, 0, len(zones)),
	}
	for _, z := range zones {
		if len(z.Area) == 0 {
			continue
		}
		b := z.Area.Bound()
		z.Bounds = domain.Bounds{MinLat: b.Min.Lat(), MinLon: b.Min.Lon(), MaxLat: b.Max.Lat(), MaxLon: b.Max.Lon()}
		idx.zones = append(idx.zones, z)
		idx.bounds = append(idx.bounds, b)
	}
	return idx
}

// Len returns the number of indexed zones.
func (idx *ZoneIndex) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.zones)
}

// Zones returns the indexed zones in load order. The slice must not be modified.
func (idx *ZoneIndex) Zones() []domain.RiskZone {
	if idx == nil {
		return nil
	}
	return idx.zones
}

// Containing returns every zone whose area contains p. Points on a zone's
// outer boundary count as inside.
func (idx *ZoneIndex) Containing(p domain.GeoPoint) []domain.RiskZone {
	if idx == nil {
		return nil
	}
	pt := orb.Point{p.Lon, p.Lat}

	var out []domain.RiskZone
	for i := range idx.zones {
		if !idx.bounds[i].Contains(pt) {
			continue
		}
		if planar.MultiPolygonContains(idx.zones[i].Area, pt) {
			out = append(out, idx.zones[i])
		}
	}
	return out
}

// PenaltyFor returns the summed (non-positive) zone penalty at p.
// Overlapping zones stack; an empty index always returns 0.
func (idx *ZoneIndex) PenaltyFor(p domain.GeoPoint, isNight bool) float64 {
	var penalty float64
	for _, z := range idx.Containing(p) {
		penalty += ZonePenalty(z, isNight)
	}
	return penalty
}

// ZonePenalty is the contribution of a single containing zone.
func ZonePenalty(z domain.RiskZone, isNight bool) float64 {
	penalty := -(z.CrimeRate * crimeRateWeight)
	if z.PoorLighting() {
		if isNight {
			penalty -= poorLightingNight
		} else {
			penalty -= poorLightingDay
		}
	}
	return penalty
}
