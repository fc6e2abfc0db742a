package usecases

import (
	"context"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/core/safety"
	"github.com/samirrijal/safepath/internal/pkg/logging"
	"github.com/samirrijal/safepath/internal/pkg/metrics"
)

// LoadZoneIndex reads the zone dataset and indexes it. A missing or broken
// source is logged and yields an empty index.
func LoadZoneIndex(ctx context.Context, repo ports.RiskZoneRepository) *safety.ZoneIndex {
	log := logging.FromContext(ctx)
	if repo == nil {
		log.WarnContext(ctx, "no risk zone source configured, zone penalties disabled")
		return safety.NewZoneIndex(nil)
	}

	zones, err := repo.List(ctx)
	if err != nil {
		log.WarnContext(ctx, "risk zones unavailable, zone penalties disabled", "error", err)
		zones = nil
	}

	idx := safety.NewZoneIndex(zones)
	metrics.ZonesLoaded.Set(float64(idx.Len()))
	log.InfoContext(ctx, "risk zones loaded", "zones", idx.Len())
	return idx
}

// ZoneLookup describes the zones covering a point and the penalty they apply.
type ZoneLookup struct {
	Point   domain.GeoPoint   `json:"point"`
	Hour    int               `json:"hour"`
	IsNight bool              `json:"is_night"`
	Zones   []domain.RiskZone `json:"zones"`
	Penalty float64           `json:"penalty"`
}

// ZoneService exposes the loaded risk zones.
type ZoneService struct {
	index *safety.ZoneIndex
}

// NewZoneService creates a new ZoneService.
func NewZoneService(index *safety.ZoneIndex) *ZoneService {
	return &ZoneService{index: index}
}

// Count returns the number of loaded zones.
func (s *ZoneService) Count() int {
	return s.index.Len()
}

// List returns a page of zones and the total count.
func (s *ZoneService) List(offset, limit int) ([]domain.RiskZone, int) {
	zones := s.index.Zones()
	total := len(zones)
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []domain.RiskZone{}, total
	}
	end := min(offset+limit, total)
	return zones[offset:end], total
}

// Lookup returns the zones containing p and the penalty applied at hour.
func (s *ZoneService) Lookup(p domain.GeoPoint, hour int) (*ZoneLookup, error) {
	req := domain.AnalysisRequest{Start: p, End: p, Hour: &hour}
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	sc := domain.NewScoringContext(hour)
	zones := s.index.Containing(p)
	if zones == nil {
		zones = []domain.RiskZone{}
	}
	return &ZoneLookup{
		Point:   p,
		Hour:    hour,
		IsNight: sc.IsNight,
		Zones:   zones,
		Penalty: s.index.PenaltyFor(p, sc.IsNight),
	}, nil
}
