package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/safepath/internal/adapters/http"
	natsadapter "github.com/samirrijal/safepath/internal/adapters/nats"
	"github.com/samirrijal/safepath/internal/adapters/postgres"
	"github.com/samirrijal/safepath/internal/adapters/temporal"
	"github.com/samirrijal/safepath/internal/adapters/valkey"
	"github.com/samirrijal/safepath/internal/bootstrap"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/core/usecases"
	"github.com/samirrijal/safepath/internal/pkg/config"
	"github.com/samirrijal/safepath/internal/pkg/logging"
	"github.com/samirrijal/safepath/internal/pkg/metrics"
	"github.com/samirrijal/safepath/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("safepath-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database is optional: zones may come from a file and the archive is extra.
	var archive *usecases.ArchiveService
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, archive disabled", "error", err)
		db = nil
	} else {
		defer db.Close()
		archive = usecases.NewArchiveService(postgres.NewAnalysisRepo(db))
		go poolMetrics(ctx, db)
	}

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, lookups will not be cached", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	// NATS
	var events ports.EventPublisher
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, analyses will not be published", "error", err)
	} else {
		defer pub.Close()
		events = pub
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	// Temporal is opt-in
	var scheduler ports.AnalysisScheduler
	if cfg.Temporal.Enabled {
		tc, err := temporal.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
		if err != nil {
			slog.Warn("temporal unavailable, background analyses disabled", "error", err)
		} else {
			defer tc.Close()
			scheduler = temporal.NewScheduler(tc, cfg.Temporal.TaskQueue)
		}
	}

	pipeline := bootstrap.NewPipeline(ctx, cfg, db, cache)

	safetySvc := usecases.NewSafetyService(pipeline.Routes, pipeline.Scorer, events)
	safetySvc.SetCandidateConcurrency(cfg.Scoring.CandidateConcurrency)

	deps := &http.Dependencies{
		Safety:    safetySvc,
		Zones:     usecases.NewZoneService(pipeline.Zones),
		Archive:   archive,
		Scheduler: scheduler,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    64 * 1024,
		AppName:      "SafePath API",
	})

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "zones", pipeline.Zones.Len())
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// In-flight analyses get up to their full timeout to finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// poolMetrics samples pgxpool statistics until ctx is cancelled.
func poolMetrics(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		}
	}
}
