package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "safepath",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "safepath",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Safety-specific metrics
	AnalysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "safety",
		Name:      "analyses_total",
		Help:      "Total safest-path analyses by outcome",
	}, []string{"outcome"})

	AnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "safepath",
		Subsystem: "safety",
		Name:      "analysis_duration_seconds",
		Help:      "Duration of a full safest-path analysis",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	RouteLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "providers",
		Name:      "route_lookups_total",
		Help:      "Routing provider lookups by status",
	}, []string{"status"})

	LandmarkLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "providers",
		Name:      "landmark_lookups_total",
		Help:      "Landmark provider lookups by provider and status",
	}, []string{"provider", "status"})

	CandidatesSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "safety",
		Name:      "candidates_skipped_total",
		Help:      "Route candidates dropped because scoring failed",
	})

	routeScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "safepath",
		Subsystem: "safety",
		Name:      "route_score",
		Help:      "Distribution of route safety scores",
		Buckets:   prometheus.LinearBuckets(0, 10, 11),
	})

	scoreFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "safety",
		Name:      "score_fallbacks_total",
		Help:      "Routes scored through a fallback path",
	}, []string{"reason"})

	ZonesLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "safepath",
		Subsystem: "zones",
		Name:      "loaded",
		Help:      "Risk zones currently indexed",
	})

	AnalysesArchived = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "archive",
		Name:      "analyses_total",
		Help:      "Analyses consumed by the archiver by result",
	}, []string{"result"})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "safepath",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "safepath",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "safepath",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "safepath",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "safepath",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// ObserveScore records a route score and, if set, the fallback that produced it.
func ObserveScore(score int, fallback string) {
	routeScores.Observe(float64(score))
	if fallback != "" {
		scoreFallbacks.WithLabelValues(fallback).Inc()
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// UpdateDBPoolMetrics updates database pool metrics from pgx pool stats.
// The stat is taken as an interface so this package does not import pgxpool.
func UpdateDBPoolMetrics(stat interface{}) {
	type poolStat interface {
		AcquiredConns() int32
		IdleConns() int32
		TotalConns() int32
	}

	if s, ok := stat.(poolStat); ok {
		DBPoolConnsAcquired.Set(float64(s.AcquiredConns()))
		DBPoolConnsIdle.Set(float64(s.IdleConns()))
		DBPoolConnsOpen.Set(float64(s.TotalConns()))
	}
}
