package safety_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/safety"
)

// square returns a closed ring covering the given lon/lat box.
func square(minLon, minLat, maxLon, maxLat float64) orb.Ring {
	return orb.Ring{
		{minLon, minLat}, {maxLon, minLat}, {maxLon, maxLat}, {minLon, maxLat}, {minLon, minLat},
	}
}

func zone(id string, crime float64, lighting string, polys ...orb.Polygon) domain.RiskZone {
	return domain.RiskZone{ID: id, CrimeRate: crime, Lighting: lighting, Area: orb.MultiPolygon(polys)}
}

var (
	inside  = domain.GeoPoint{Lat: 28.605, Lon: 77.205}
	outside = domain.GeoPoint{Lat: 28.650, Lon: 77.250}
)

func TestZoneIndex_CrimePenalty(t *testing.T) {
	idx := safety.NewZoneIndex([]domain.RiskZone{
		zone("cp", 0.8, "", orb.Polygon{square(77.20, 28.60, 77.21, 28.61)}),
	})

	assert.InDelta(t, -16.0, idx.PenaltyFor(inside, false), 1e-9)
	assert.InDelta(t, -16.0, idx.PenaltyFor(inside, true), 1e-9)
	assert.Zero(t, idx.PenaltyFor(outside, false))
}

func TestZoneIndex_LightingByTimeOfDay(t *testing.T) {
	idx := safety.NewZoneIndex([]domain.RiskZone{
		zone("dark", 0, domain.LightingPoor, orb.Polygon{square(77.20, 28.60, 77.21, 28.61)}),
	})

	night := domain.NewScoringContext(22)
	day := domain.NewScoringContext(12)

	assert.InDelta(t, -25.0, idx.PenaltyFor(inside, night.IsNight), 1e-9)
	assert.InDelta(t, -5.0, idx.PenaltyFor(inside, day.IsNight), 1e-9)
}

func TestZoneIndex_OtherLightingValuesIgnored(t *testing.T) {
	idx := safety.NewZoneIndex([]domain.RiskZone{
		zone("lit", 0.5, "good", orb.Polygon{square(77.20, 28.60, 77.21, 28.61)}),
		zone("caps", 0.5, "POOR", orb.Polygon{square(77.20, 28.60, 77.21, 28.61)}),
	})

	assert.InDelta(t, -20.0, idx.PenaltyFor(inside, true), 1e-9)
}

func TestZoneIndex_OverlappingZonesStack(t *testing.T) {
	idx := safety.NewZoneIndex([]domain.RiskZone{
		zone("a", 0.5, "", orb.Polygon{square(77.20, 28.60, 77.21, 28.61)}),
		zone("b", 0.25, domain.LightingPoor, orb.Polygon{square(77.204, 28.604, 77.22, 28.62)}),
	})

	// -(0.5*20) + -(0.25*20) - 25
	assert.InDelta(t, -40.0, idx.PenaltyFor(inside, true), 1e-9)
	assert.Len(t, idx.Containing(inside), 2)

	// Only zone b covers this point.
	assert.InDelta(t, -10.0, idx.PenaltyFor(domain.GeoPoint{Lat: 28.615, Lon: 77.215}, false), 1e-9)
}

func TestZoneIndex_Holes(t *testing.T) {
	donut := orb.Polygon{
		square(77.20, 28.60, 77.21, 28.61),
		square(77.204, 28.604, 77.206, 28.606),
	}
	idx := safety.NewZoneIndex([]domain.RiskZone{zone("donut", 1, "", donut)})

	assert.Zero(t, idx.PenaltyFor(inside, false), "point in the hole")
	assert.InDelta(t, -20.0, idx.PenaltyFor(domain.GeoPoint{Lat: 28.601, Lon: 77.201}, false), 1e-9)
}

func TestZoneIndex_MultiPolygon(t *testing.T) {
	idx := safety.NewZoneIndex([]domain.RiskZone{
		zone("split", 0.5, "",
			orb.Polygon{square(77.20, 28.60, 77.21, 28.61)},
			orb.Polygon{square(77.24, 28.64, 77.26, 28.66)},
		),
	})

	assert.InDelta(t, -10.0, idx.PenaltyFor(inside, false), 1e-9)
	assert.InDelta(t, -10.0, idx.PenaltyFor(outside, false), 1e-9)
	assert.Zero(t, idx.PenaltyFor(domain.GeoPoint{Lat: 28.63, Lon: 77.23}, false))
}

func TestZoneIndex_BoundaryCountsAsInside(t *testing.T) {
	idx := safety.NewZoneIndex([]domain.RiskZone{
		zone("edge", 0.5, "", orb.Polygon{square(77.20, 28.60, 77.21, 28.61)}),
	})

	onEdge := domain.GeoPoint{Lat: 28.605, Lon: 77.21}
	assert.InDelta(t, -10.0, idx.PenaltyFor(onEdge, false), 1e-9)
	assert.Len(t, idx.Containing(onEdge), 1)
}

func TestZoneIndex_EmptyIsNoOp(t *testing.T) {
	var nilIdx *safety.ZoneIndex
	assert.Zero(t, nilIdx.PenaltyFor(inside, true))
	assert.Zero(t, nilIdx.Len())

	empty := safety.NewZoneIndex(nil)
	assert.Zero(t, empty.PenaltyFor(inside, true))

	noArea := safety.NewZoneIndex([]domain.RiskZone{{ID: "blank", CrimeRate: 1}})
	assert.Zero(t, noArea.Len())
	assert.Zero(t, noArea.PenaltyFor(inside, true))
}

func TestNewZoneIndex_FillsBounds(t *testing.T) {
	idx := safety.NewZoneIndex([]domain.RiskZone{
		zone("b", 0.1, "", orb.Polygon{square(77.20, 28.60, 77.21, 28.61)}, orb.Polygon{square(77.30, 28.50, 77.31, 28.51)}),
		{ID: "no-area"},
	})

	assert.Equal(t, 1, idx.Len())
	got := idx.Zones()[0].Bounds
	assert.Equal(t, domain.Bounds{MinLat: 28.50, MinLon: 77.20, MaxLat: 28.61, MaxLon: 77.31}, got)
	assert.True(t, got.Contains(inside))
}
