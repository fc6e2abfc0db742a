package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/pkg/metrics"
)

const cacheOpTimeout = 200 * time.Millisecond

// LandmarkService wraps a landmark provider with a read-through cache and
// lookup metrics. It satisfies ports.LandmarkProvider itself.
type LandmarkService struct {
	provider ports.LandmarkProvider
	name     string
	cache    ports.CacheService
	ttl      int
}

// NewLandmarkService creates a new LandmarkService. cache may be nil.
func NewLandmarkService(provider ports.LandmarkProvider, name string, cache ports.CacheService, ttlSeconds int) *LandmarkService {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &LandmarkService{provider: provider, name: name, cache: cache, ttl: ttlSeconds}
}

// LandmarkCacheKey quantises the point to ~11 m so nearby samples share entries.
func LandmarkCacheKey(provider string, p domain.GeoPoint) string {
	return fmt.Sprintf("landmarks:%s:%.4f:%.4f", provider, p.Lat, p.Lon)
}

// Nearby returns landmarks near p, serving from cache when possible.
// Only successful and empty lookups are cached.
func (s *LandmarkService) Nearby(ctx context.Context, p domain.GeoPoint) domain.Fetch[domain.RawLandmark] {
	key := LandmarkCacheKey(s.name, p)

	if s.cache != nil {
		cctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
		data, err := s.cache.Get(cctx, key)
		cancel()
		if err == nil {
			var items []domain.RawLandmark
			if err := json.Unmarshal(data, &items); err == nil {
				metrics.CacheHits.WithLabelValues("landmarks").Inc()
				f := domain.Fetched(items)
				metrics.LandmarkLookups.WithLabelValues(s.name, string(f.Status)).Inc()
				return f
			}
			evict(ctx, s.cache, key)
		}
		metrics.CacheMisses.WithLabelValues("landmarks").Inc()
	}

	f := s.provider.Nearby(ctx, p)
	metrics.LandmarkLookups.WithLabelValues(s.name, string(f.Status)).Inc()

	if s.cache != nil && (f.Status == domain.FetchOK || f.Status == domain.FetchEmpty) {
		items := f.Items
		if items == nil {
			items = []domain.RawLandmark{}
		}
		if data, err := json.Marshal(items); err == nil {
			cctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
			_ = s.cache.Set(cctx, key, data, s.ttl)
			cancel()
		}
	}

	return f
}

// evict drops an entry that no longer decodes.
func evict(ctx context.Context, cache ports.CacheService, key string) {
	cctx, cancel := context.WithTimeout(ctx, cacheOpTimeout)
	defer cancel()
	_ = cache.Delete(cctx, key)
}
