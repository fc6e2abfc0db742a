package workflows

import (
	"context"
	"fmt"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/core/safety"
	"github.com/samirrijal/safepath/internal/core/usecases"
)

// AnalysisActivities holds the activity implementations for the safest-path workflow.
type AnalysisActivities struct {
	Routes ports.RouteProvider
	Scorer *safety.Scorer
	Events ports.EventPublisher
}

// FetchCandidates returns the usable candidates between start and end. A
// failed routing lookup is returned as an error so Temporal retries it.
func (a *AnalysisActivities) FetchCandidates(ctx context.Context, start, end domain.GeoPoint) ([]domain.RouteCandidate, error) {
	f := a.Routes.Routes(ctx, start, end)
	if f.Status == domain.FetchFailed {
		return nil, fmt.Errorf("fetch routes: %w", f.Err)
	}
	return usecases.Usable(f.Items), nil
}

// ScoreCandidate scores a single route candidate.
func (a *AnalysisActivities) ScoreCandidate(ctx context.Context, c domain.RouteCandidate, sc domain.ScoringContext) (domain.ScoredRoute, error) {
	return a.Scorer.ScoreRoute(ctx, c, sc), nil
}

// PublishAnalysis emits the finished analysis. Without a publisher it is a no-op.
func (a *AnalysisActivities) PublishAnalysis(ctx context.Context, analysis *domain.Analysis) error {
	if a.Events == nil {
		return nil
	}
	if err := a.Events.PublishAnalysis(ctx, analysis); err != nil {
		return fmt.Errorf("publish analysis %s: %w", analysis.ID, err)
	}
	return nil
}
