// Package bootstrap builds the scoring pipeline from configuration. It is
// shared by the API server and the workflow worker.
package bootstrap

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/samirrijal/safepath/internal/adapters/latlong"
	"github.com/samirrijal/safepath/internal/adapters/osrm"
	"github.com/samirrijal/safepath/internal/adapters/overpass"
	"github.com/samirrijal/safepath/internal/adapters/postgres"
	"github.com/samirrijal/safepath/internal/adapters/valkey"
	"github.com/samirrijal/safepath/internal/adapters/zonefile"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/core/safety"
	"github.com/samirrijal/safepath/internal/core/usecases"
	"github.com/samirrijal/safepath/internal/pkg/config"
)

// Pipeline is everything needed to score routes.
type Pipeline struct {
	Zones  *safety.ZoneIndex
	Routes ports.RouteProvider
	Scorer *safety.Scorer
}

// cacheOrNil avoids handing a typed nil to the services.
func cacheOrNil(c *valkey.Cache) ports.CacheService {
	if c == nil {
		return nil
	}
	return c
}

// ZoneSource picks the risk-zone repository. The postgres source falls back
// to the file when no database is available.
func ZoneSource(cfg config.ZonesConfig, db *postgres.DB) ports.RiskZoneRepository {
	if strings.EqualFold(cfg.Source, "postgres") {
		if db != nil {
			return postgres.NewZoneRepo(db)
		}
		slog.Warn("zones.source is postgres but no database is available, reading file", "file", cfg.File)
	}
	return zonefile.NewRepo(cfg.File)
}

// LandmarkProvider builds the configured provider behind a read-through cache.
// It returns nil when landmarks are disabled.
func LandmarkProvider(cfg config.LandmarksConfig, cache *valkey.Cache) ports.LandmarkProvider {
	timeout := time.Duration(cfg.Timeout) * time.Second

	var provider ports.LandmarkProvider
	switch strings.ToLower(cfg.Provider) {
	case "overpass":
		provider = overpass.NewClient(cfg.OverpassEndpoint, cfg.RadiusMeters, timeout)
	case "latlong":
		c := latlong.NewClient(cfg.LatLongURL, cfg.APIKey, timeout)
		if !c.Configured() {
			slog.Warn("latlong API key missing or placeholder; landmark lookups disabled")
		}
		provider = c
	default:
		slog.Info("landmark lookups disabled", "provider", cfg.Provider)
		return nil
	}

	return usecases.NewLandmarkService(provider, strings.ToLower(cfg.Provider), cacheOrNil(cache), cfg.CacheTTL)
}

// RouteProvider builds the OSRM client behind a read-through cache.
func RouteProvider(cfg config.RoutingConfig, cache *valkey.Cache) ports.RouteProvider {
	client := osrm.NewClient(cfg.BaseURL, cfg.Profile, cfg.UserAgent, time.Duration(cfg.Timeout)*time.Second)
	return usecases.NewCachedRoutes(client, cacheOrNil(cache), cfg.CacheTTL)
}

// NewPipeline loads zones and wires the providers into a scorer.
func NewPipeline(ctx context.Context, cfg *config.Config, db *postgres.DB, cache *valkey.Cache) *Pipeline {
	zones := usecases.LoadZoneIndex(ctx, ZoneSource(cfg.Zones, db))

	scorer := safety.NewScorer(zones, LandmarkProvider(cfg.Landmarks, cache),
		safety.WithLookupConcurrency(cfg.Scoring.LookupConcurrency),
		safety.WithLookupTimeout(time.Duration(cfg.Landmarks.Timeout)*time.Second),
		safety.WithLogger(slog.Default().With("component", "scorer")),
	)

	return &Pipeline{
		Zones:  zones,
		Routes: RouteProvider(cfg.Routing, cache),
		Scorer: scorer,
	}
}
