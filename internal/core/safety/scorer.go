package safety

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/pkg/geospatial"
)

const (
	baseScore = 100.0

	// MalformedScore is assigned to a route whose geometry cannot be decoded.
	MalformedScore = 50

	// NoSignalMin and NoSignalMax bound the score substituted when nothing
	// along the path moved the score away from baseScore.
	NoSignalMin = 65
	NoSignalMax = 95

	defaultLookupConcurrency = 4
	defaultLookupTimeout     = 5 * time.Second
)

// Result is the outcome of scoring one path geometry.
type Result struct {
	Score     int
	POIs      []domain.POI
	HasSignal bool
	Fallback  string
	Samples   int
	Lookups   map[domain.FetchStatus]int
}

// Scorer computes bounded safety scores for encoded paths.
type Scorer struct {
	zones         *ZoneIndex
	landmarks     ports.LandmarkProvider
	concurrency   int
	lookupTimeout time.Duration
	logger        *slog.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithRand sets the random source used for the no-signal fallback.
func WithRand(r *rand.Rand) Option {
	return func(s *Scorer) { s.rng = r }
}

// WithLookupConcurrency bounds the number of in-flight landmark lookups per path.
func WithLookupConcurrency(n int) Option {
	return func(s *Scorer) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLookupTimeout bounds each landmark lookup.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.lookupTimeout = d
		}
	}
}

// WithLogger sets the scorer's logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScorer creates a Scorer. A nil index scores no zone penalties and a nil
// landmark provider is treated as unconfigured.
func NewScorer(zones *ZoneIndex, landmarks ports.LandmarkProvider, opts ...Option) *Scorer {
	s := &Scorer{
		zones:         zones,
		landmarks:     landmarks,
		concurrency:   defaultLookupConcurrency,
		lookupTimeout: defaultLookupTimeout,
		logger:        slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Zones returns the index the scorer reads from.
func (s *Scorer) Zones() *ZoneIndex {
	return s.zones
}

// Score decodes geometry, samples it and accumulates zone and landmark effects.
func (s *Scorer) Score(ctx context.Context, geometry string, sc domain.ScoringContext) Result {
	points, err := geospatial.DecodePolyline(geometry)
	if err != nil {
		s.logger.WarnContext(ctx, "route geometry not decodable, using fallback score", "error", err)
		return Result{
			Score:    MalformedScore,
			POIs:     []domain.POI{},
			Fallback: domain.FallbackMalformedGeometry,
		}
	}

	sampled := SamplePath(points)
	samples := make([]domain.GeoPoint, len(sampled))
	for i, p := range sampled {
		samples[i] = domain.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
	}

	fetches := s.lookup(ctx, samples)

	res := Result{
		POIs:      []domain.POI{},
		HasSignal: true,
		Samples:   len(samples),
		Lookups:   make(map[domain.FetchStatus]int),
	}

	total := baseScore
	for i, pt := range samples {
		total += s.zones.PenaltyFor(pt, sc.IsNight)

		f := fetches[i]
		res.Lookups[f.Status]++
		if !f.OK() {
			if f.Status == domain.FetchFailed {
				s.logger.DebugContext(ctx, "landmark lookup failed", "point", pt.String(), "error", f.Err)
			}
			continue
		}
		for _, l := range f.Items {
			poi := observe(l, pt)
			total += Delta(poi.Class, sc.IsNight)
			res.POIs = append(res.POIs, poi)
		}
	}

	if total == baseScore {
		total = float64(s.noSignalScore())
		res.HasSignal = false
		res.Fallback = domain.FallbackNoSignal
	}

	res.Score = clampScore(total)
	return res
}

// ScoreRoute scores a candidate and returns it as a ScoredRoute.
func (s *Scorer) ScoreRoute(ctx context.Context, c domain.RouteCandidate, sc domain.ScoringContext) domain.ScoredRoute {
	r := s.Score(ctx, c.Geometry, sc)
	return domain.ScoredRoute{
		ID:              c.ID,
		Geometry:        c.Geometry,
		DistanceMeters:  c.DistanceMeters,
		DurationSeconds: c.DurationSeconds(),
		SafetyScore:     r.Score,
		HasSignal:       r.HasSignal,
		Fallback:        r.Fallback,
		SampleCount:     r.Samples,
		POIs:            r.POIs,
	}
}

// lookup fetches landmarks for every sample with bounded concurrency.
// Results are stored by sample index so attribution never depends on timing.
// A provider panic is re-raised on the calling goroutine once all lookups end.
func (s *Scorer) lookup(ctx context.Context, samples []domain.GeoPoint) []domain.Fetch[domain.RawLandmark] {
	out := make([]domain.Fetch[domain.RawLandmark], len(samples))
	if s.landmarks == nil {
		for i := range out {
			out[i] = domain.NotConfigured[domain.RawLandmark]()
		}
		return out
	}

	var (
		g         errgroup.Group
		panicOnce sync.Once
		panicked  any
	)
	g.SetLimit(s.concurrency)
	for i, pt := range samples {
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					panicOnce.Do(func() { panicked = p })
				}
			}()
			callCtx, cancel := context.WithTimeout(ctx, s.lookupTimeout)
			defer cancel()
			out[i] = s.landmarks.Nearby(callCtx, pt)
			return nil
		})
	}
	_ = g.Wait()
	if panicked != nil {
		panic(panicked)
	}
	return out
}

func (s *Scorer) noSignalScore() int {
	span := NoSignalMax - NoSignalMin + 1
	if s.rng == nil {
		return NoSignalMin + rand.IntN(span)
	}
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return NoSignalMin + s.rng.IntN(span)
}

func clampScore(total float64) int {
	return int(math.Round(math.Max(0, math.Min(100, total))))
}
