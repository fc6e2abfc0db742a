package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/safepath/internal/adapters/nats"
	"github.com/samirrijal/safepath/internal/adapters/postgres"
	"github.com/samirrijal/safepath/internal/core/usecases"
	"github.com/samirrijal/safepath/internal/pkg/config"
	"github.com/samirrijal/safepath/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("safepath-archiver")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	archive := usecases.NewArchiveService(postgres.NewAnalysisRepo(db))

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL, natsadapter.DurableArchiver)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	if err := archive.Consume(ctx, sub); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("archiver started", "durable", natsadapter.DurableArchiver)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down archiver", "signal", sig.String())
}
