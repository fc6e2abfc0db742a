package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/samirrijal/safepath/internal/adapters/postgres"
	"github.com/samirrijal/safepath/internal/adapters/zonefile"
	"github.com/samirrijal/safepath/internal/pkg/config"
)

const batchSize = 500

// zoneload reads a GeoJSON FeatureCollection of risk zones from a file or
// URL and upserts it into risk_zones.
//
//	zoneload [path-or-url]
func main() {
	cfg, err := config.Load("safepath-zoneload")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	source := cfg.Zones.File
	if len(os.Args) > 1 {
		source = os.Args[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	data, err := read(ctx, source)
	if err != nil {
		log.Fatalf("read %s: %v", source, err)
	}

	zones, skipped, err := zonefile.Parse(data)
	if err != nil {
		log.Fatalf("parse %s: %v", source, err)
	}
	log.Printf("SafePath zone loader: %d zones from %s (%d features skipped)", len(zones), source, skipped)

	repo := postgres.NewZoneRepo(db)
	for start := 0; start < len(zones); start += batchSize {
		end := min(start+batchSize, len(zones))
		if err := repo.UpsertBatch(ctx, zones[start:end]); err != nil {
			log.Fatalf("upsert zones %d-%d: %v", start, end, err)
		}
		log.Printf("upserted %d/%d", end, len(zones))
	}

	log.Println("zone load complete")
}

// read returns the contents of a local path or an http(s) URL.
func read(ctx context.Context, source string) ([]byte, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.ReadFile(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 120 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
