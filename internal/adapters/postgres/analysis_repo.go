package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// AnalysisRepo implements ports.AnalysisRepository. Routes and landmarks are
// stored as jsonb.
type AnalysisRepo struct {
	db *DB
}

// NewAnalysisRepo creates a new AnalysisRepo.
func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

// Insert stores an analysis. Re-inserting the same ID is a no-op so
// redelivered events are harmless.
func (r *AnalysisRepo) Insert(ctx context.Context, a *domain.Analysis) error {
	routes, err := json.Marshal(a.Routes)
	if err != nil {
		return fmt.Errorf("encode routes: %w", err)
	}
	landmarks, err := json.Marshal(a.POIs)
	if err != nil {
		return fmt.Errorf("encode landmarks: %w", err)
	}

	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO route_analyses (id, start_lat, start_lon, end_lat, end_lon, hour, is_night,
		                            safest_route_id, routes, landmarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`, a.ID, a.Start.Lat, a.Start.Lon, a.End.Lat, a.End.Lon, a.Hour, a.IsNight,
		a.BestRouteID, routes, landmarks, a.CreatedAt)
	return err
}

const analysisColumns = `
	id::text, start_lat, start_lon, end_lat, end_lon, hour, is_night,
	safest_route_id, routes, landmarks, created_at`

// GetByID returns an analysis, or domain.ErrNotFound.
func (r *AnalysisRepo) GetByID(ctx context.Context, id string) (*domain.Analysis, error) {
	row := r.db.Pool.QueryRow(ctx, `SELECT `+analysisColumns+` FROM route_analyses WHERE id = $1`, id)
	a, err := scanAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ListRecent returns the newest analyses first.
func (r *AnalysisRepo) ListRecent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+analysisColumns+`
		FROM route_analyses
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAnalysis(row pgx.Row) (*domain.Analysis, error) {
	var a domain.Analysis
	var routes, landmarks []byte
	if err := row.Scan(
		&a.ID, &a.Start.Lat, &a.Start.Lon, &a.End.Lat, &a.End.Lon, &a.Hour, &a.IsNight,
		&a.BestRouteID, &routes, &landmarks, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(routes, &a.Routes); err != nil {
		return nil, fmt.Errorf("decode routes: %w", err)
	}
	if err := json.Unmarshal(landmarks, &a.POIs); err != nil {
		return nil, fmt.Errorf("decode landmarks: %w", err)
	}
	return &a, nil
}
