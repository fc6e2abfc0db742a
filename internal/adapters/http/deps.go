package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/safepath/internal/adapters/postgres"
	"github.com/samirrijal/safepath/internal/adapters/valkey"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers.
// Archive, Scheduler, NATS, DB and Cache are optional.
type Dependencies struct {
	Safety    *usecases.SafetyService
	Zones     *usecases.ZoneService
	Archive   *usecases.ArchiveService
	Scheduler ports.AnalysisScheduler
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
}
