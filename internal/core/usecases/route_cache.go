package usecases

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/pkg/metrics"
)

// CachedRoutes is a read-through cache in front of a RouteProvider.
type CachedRoutes struct {
	provider ports.RouteProvider
	cache    ports.CacheService
	ttl      int
}

// NewCachedRoutes wraps provider. A nil cache disables caching.
func NewCachedRoutes(provider ports.RouteProvider, cache ports.CacheService, ttlSeconds int) *CachedRoutes {
	if ttlSeconds <= 0 {
		ttlSeconds = 300
	}
	return &CachedRoutes{provider: provider, cache: cache, ttl: ttlSeconds}
}

// RouteCacheKey quantises both endpoints to four decimals.
func RouteCacheKey(start, end domain.GeoPoint) string {
	return fmt.Sprintf("routes:%.4f:%.4f:%.4f:%.4f", start.Lat, start.Lon, end.Lat, end.Lon)
}

// Routes returns cached candidates when available. Only successful
// lookups are stored; empty and failed results always go to the provider.
func (r *CachedRoutes) Routes(ctx context.Context, start, end domain.GeoPoint) domain.Fetch[domain.RouteCandidate] {
	if r.cache == nil {
		return r.provider.Routes(ctx, start, end)
	}

	key := RouteCacheKey(start, end)

	cctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	data, err := r.cache.Get(cctx, key)
	cancel()
	if err == nil {
		var items []domain.RouteCandidate
		if err := json.Unmarshal(data, &items); err == nil && len(items) > 0 {
			metrics.CacheHits.WithLabelValues("routes").Inc()
			return domain.Fetched(items)
		}
		evict(ctx, r.cache, key)
	}
	metrics.CacheMisses.WithLabelValues("routes").Inc()

	f := r.provider.Routes(ctx, start, end)
	if f.OK() {
		if data, err := json.Marshal(f.Items); err == nil {
			cctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
			_ = r.cache.Set(cctx, key, data, r.ttl)
			cancel()
		}
	}
	return f
}
