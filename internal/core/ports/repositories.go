package ports

import (
	"context"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// RiskZoneRepository supplies the risk-zone dataset.
type RiskZoneRepository interface {
	List(ctx context.Context) ([]domain.RiskZone, error)
}

// RiskZoneWriter persists risk zones (used by the loader).
type RiskZoneWriter interface {
	UpsertBatch(ctx context.Context, zones []domain.RiskZone) error
}

// AnalysisRepository archives completed analyses.
type AnalysisRepository interface {
	Insert(ctx context.Context, analysis *domain.Analysis) error
	GetByID(ctx context.Context, id string) (*domain.Analysis, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error)
}
