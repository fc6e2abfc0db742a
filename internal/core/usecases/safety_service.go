package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/core/safety"
	"github.com/samirrijal/safepath/internal/pkg/logging"
	"github.com/samirrijal/safepath/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/safepath/internal/core/usecases")

const defaultCandidateConcurrency = 3

// SafetyService runs safest-path analyses.
type SafetyService struct {
	routes      ports.RouteProvider
	scorer      *safety.Scorer
	events      ports.EventPublisher
	concurrency int
	now         func() time.Time
}

// NewSafetyService creates a new SafetyService. events may be nil.
func NewSafetyService(routes ports.RouteProvider, scorer *safety.Scorer, events ports.EventPublisher) *SafetyService {
	return &SafetyService{
		routes:      routes,
		scorer:      scorer,
		events:      events,
		concurrency: defaultCandidateConcurrency,
		now:         time.Now,
	}
}

// SetCandidateConcurrency bounds how many candidates are scored at once.
func (s *SafetyService) SetCandidateConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// ValidateRequest checks coordinates and hour.
func ValidateRequest(req domain.AnalysisRequest) error {
	if !req.Start.Valid() {
		return fmt.Errorf("%w: start coordinate out of range", domain.ErrInvalidRequest)
	}
	if !req.End.Valid() {
		return fmt.Errorf("%w: end coordinate out of range", domain.ErrInvalidRequest)
	}
	if h := req.HourOrDefault(); h < 0 || h > 23 {
		return fmt.Errorf("%w: hour must be 0-23, got %d", domain.ErrInvalidRequest, h)
	}
	return nil
}

// Analyze scores every candidate route between start and end and ranks them.
// A routing outage yields an empty analysis, not an error.
func (s *SafetyService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.Analysis, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "SafetyService.Analyze")
	defer span.End()

	log := logging.FromContext(ctx)
	start := time.Now()
	sc := domain.NewScoringContext(req.HourOrDefault())

	analysis := NewAnalysis(uuid.NewString(), req, s.now())
	span.SetAttributes(
		attribute.String("analysis.id", analysis.ID),
		attribute.Int("analysis.hour", sc.Hour),
	)

	fetch := s.routes.Routes(ctx, req.Start, req.End)
	metrics.RouteLookups.WithLabelValues(string(fetch.Status)).Inc()
	if !fetch.OK() {
		if fetch.Status == domain.FetchFailed {
			log.WarnContext(ctx, "routing provider unavailable", "error", fetch.Err)
		}
		metrics.AnalysesTotal.WithLabelValues("no_routes").Inc()
		s.publish(ctx, analysis)
		return analysis, nil
	}

	scored := s.scoreCandidates(ctx, Usable(fetch.Items), sc)
	span.SetAttributes(attribute.Int("analysis.routes", len(scored)))

	if Complete(analysis, scored) {
		metrics.AnalysesTotal.WithLabelValues("ranked").Inc()
	} else {
		metrics.AnalysesTotal.WithLabelValues("no_routes").Inc()
	}

	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	log.InfoContext(ctx, "analysis complete",
		"analysis_id", analysis.ID,
		"routes", len(analysis.Routes),
		"landmarks", len(analysis.POIs),
		"duration", time.Since(start).String(),
	)

	s.publish(ctx, analysis)
	return analysis, nil
}

// NewAnalysis starts an empty analysis for req.
func NewAnalysis(id string, req domain.AnalysisRequest, createdAt time.Time) *domain.Analysis {
	sc := domain.NewScoringContext(req.HourOrDefault())
	return &domain.Analysis{
		ID:        id,
		Start:     req.Start,
		End:       req.End,
		Hour:      sc.Hour,
		IsNight:   sc.IsNight,
		Routes:    []domain.ScoredRoute{},
		POIs:      []domain.POI{},
		CreatedAt: createdAt.UTC(),
	}
}

// Complete fills a with the ranked routes and their landmarks. Landmarks are
// listed in router order, before ranking. It reports whether any route survived.
func Complete(a *domain.Analysis, scored []domain.ScoredRoute) bool {
	for _, r := range scored {
		a.POIs = append(a.POIs, r.POIs...)
	}
	ranked, err := safety.Rank(scored)
	if err != nil {
		a.Routes = []domain.ScoredRoute{}
		a.BestRouteID = nil
		return false
	}
	a.Routes = ranked
	best := ranked[0].ID
	a.BestRouteID = &best
	return true
}

// Usable drops candidates without geometry; the rest keep their router index.
func Usable(candidates []domain.RouteCandidate) []domain.RouteCandidate {
	out := make([]domain.RouteCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Geometry == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// scoreCandidates scores candidates concurrently. A candidate that panics is
// dropped; the others are returned in input order.
func (s *SafetyService) scoreCandidates(ctx context.Context, candidates []domain.RouteCandidate, sc domain.ScoringContext) []domain.ScoredRoute {
	results := make([]*domain.ScoredRoute, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, c := range candidates {
		g.Go(func() error {
			r, err := s.scoreOne(ctx, c, sc)
			if err != nil {
				logging.FromContext(ctx).ErrorContext(ctx, "candidate skipped", "route_id", c.ID, "error", err)
				metrics.CandidatesSkipped.Inc()
				return nil
			}
			results[i] = &r
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.ScoredRoute, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out
}

func (s *SafetyService) scoreOne(ctx context.Context, c domain.RouteCandidate, sc domain.ScoringContext) (r domain.ScoredRoute, err error) {
	ctx, span := tracer.Start(ctx, "SafetyService.scoreCandidate")
	defer span.End()
	span.SetAttributes(attribute.Int("route.id", c.ID))

	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("scoring panicked: %v", p)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	r = s.scorer.ScoreRoute(ctx, c, sc)
	metrics.ObserveScore(r.SafetyScore, r.Fallback)
	return r, nil
}

func (s *SafetyService) publish(ctx context.Context, a *domain.Analysis) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAnalysis(ctx, a); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "publish analysis failed", "analysis_id", a.ID, "error", err)
	}
}

