package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/pkg/geospatial"
)

// ZoneRepo implements ports.RiskZoneRepository and ports.RiskZoneWriter with
// PostGIS storage.
type ZoneRepo struct {
	db *DB
}

// NewZoneRepo creates a new ZoneRepo.
func NewZoneRepo(db *DB) *ZoneRepo {
	return &ZoneRepo{db: db}
}

// List returns every stored zone in insertion order.
func (r *ZoneRepo) List(ctx context.Context) ([]domain.RiskZone, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT zone_key, COALESCE(name, ''), crime_rate, COALESCE(lighting, ''),
		       ST_AsGeoJSON(area), created_at
		FROM risk_zones
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var zones []domain.RiskZone
	for rows.Next() {
		var z domain.RiskZone
		var area []byte
		if err := rows.Scan(&z.ID, &z.Name, &z.CrimeRate, &z.Lighting, &area, &z.CreatedAt); err != nil {
			return nil, err
		}
		if z.Area, err = geospatial.ParseArea(area); err != nil {
			return nil, fmt.Errorf("zone %s: %w", z.ID, err)
		}
		zones = append(zones, z)
	}
	return zones, rows.Err()
}

// UpsertBatch inserts or replaces zones keyed by their ID using pgx.Batch.
func (r *ZoneRepo) UpsertBatch(ctx context.Context, zones []domain.RiskZone) error {
	batch := &pgx.Batch{}
	for _, z := range zones {
		area, err := geospatial.MarshalArea(z.Area)
		if err != nil {
			return fmt.Errorf("encode zone %s: %w", z.ID, err)
		}
		batch.Queue(`
			INSERT INTO risk_zones (zone_key, name, crime_rate, lighting, area)
			VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, ''), ST_Multi(ST_SetSRID(ST_GeomFromGeoJSON($5), 4326)))
			ON CONFLICT (zone_key) DO UPDATE
			SET name = EXCLUDED.name, crime_rate = EXCLUDED.crime_rate,
			    lighting = EXCLUDED.lighting, area = EXCLUDED.area
		`, z.ID, z.Name, z.CrimeRate, z.Lighting, string(area))
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range zones {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}
