package ports

import (
	"context"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// RouteProvider returns candidate walking paths between two points.
// Failures are reported through the Fetch status, never as a panic.
type RouteProvider interface {
	Routes(ctx context.Context, start, end domain.GeoPoint) domain.Fetch[domain.RouteCandidate]
}

// LandmarkProvider returns landmarks near a point.
type LandmarkProvider interface {
	Nearby(ctx context.Context, point domain.GeoPoint) domain.Fetch[domain.RawLandmark]
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishAnalysis(ctx context.Context, analysis *domain.Analysis) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeAnalyses(ctx context.Context, handler func(ctx context.Context, analysis *domain.Analysis) error) error
}

// AnalysisScheduler starts an analysis asynchronously and returns its ID.
type AnalysisScheduler interface {
	Schedule(ctx context.Context, req domain.AnalysisRequest) (string, error)
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
