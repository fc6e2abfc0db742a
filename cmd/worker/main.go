package main

import (
	"context"
	"log"
	"log/slog"

	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/safepath/internal/adapters/nats"
	"github.com/samirrijal/safepath/internal/adapters/postgres"
	"github.com/samirrijal/safepath/internal/adapters/temporal"
	"github.com/samirrijal/safepath/internal/adapters/valkey"
	"github.com/samirrijal/safepath/internal/bootstrap"
	"github.com/samirrijal/safepath/internal/pkg/config"
	"github.com/samirrijal/safepath/internal/pkg/logging"
	"github.com/samirrijal/safepath/internal/pkg/telemetry"
	"github.com/samirrijal/safepath/internal/workflows"
)

func main() {
	cfg, err := config.Load("safepath-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	c, err := temporal.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer c.Close()

	// Zones come from Postgres only when configured; the worker never needs the archive.
	var db *postgres.DB
	if cfg.Zones.Source == "postgres" {
		db, err = postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			slog.Warn("database unavailable", "error", err)
			db = nil
		} else {
			defer db.Close()
		}
	}

	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable, lookups will not be cached", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}

	activities := &workflows.AnalysisActivities{}
	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, analyses will not be published", "error", err)
	} else {
		defer pub.Close()
		activities.Events = pub
	}

	pipeline := bootstrap.NewPipeline(ctx, cfg, db, cache)
	activities.Routes = pipeline.Routes
	activities.Scorer = pipeline.Scorer

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.SafestPathWorkflow)
	w.RegisterActivity(activities)

	slog.Info("analysis worker started", "task_queue", cfg.Temporal.TaskQueue, "zones", pipeline.Zones.Len())
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
