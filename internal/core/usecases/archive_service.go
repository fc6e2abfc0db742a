package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/samirrijal/safepath/internal/core/domain"
	"github.com/samirrijal/safepath/internal/core/ports"
	"github.com/samirrijal/safepath/internal/pkg/logging"
	"github.com/samirrijal/safepath/internal/pkg/metrics"
)

// ArchiveService stores and retrieves completed analyses.
type ArchiveService struct {
	repo ports.AnalysisRepository
}

// NewArchiveService creates a new ArchiveService.
func NewArchiveService(repo ports.AnalysisRepository) *ArchiveService {
	return &ArchiveService{repo: repo}
}

// Store archives an analysis.
func (s *ArchiveService) Store(ctx context.Context, a *domain.Analysis) error {
	if a == nil || a.ID == "" {
		return fmt.Errorf("%w: analysis without id", domain.ErrInvalidRequest)
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return fmt.Errorf("archive analysis %s: %w", a.ID, err)
	}
	return nil
}

// Get returns an archived analysis by ID.
func (s *ArchiveService) Get(ctx context.Context, id string) (*domain.Analysis, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: malformed analysis id", domain.ErrInvalidRequest)
	}
	return s.repo.GetByID(ctx, id)
}

// Recent returns the most recent analyses, newest first.
func (s *ArchiveService) Recent(ctx context.Context, limit int) ([]domain.Analysis, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}

// Consume archives every analysis delivered by events. Events that can never
// be stored are acknowledged and dropped; storage failures are returned so the
// broker redelivers them.
func (s *ArchiveService) Consume(ctx context.Context, events ports.EventSubscriber) error {
	return events.SubscribeAnalyses(ctx, func(ctx context.Context, a *domain.Analysis) error {
		log := logging.FromContext(ctx)
		err := s.Store(ctx, a)
		switch {
		case err == nil:
			metrics.AnalysesArchived.WithLabelValues("stored").Inc()
			log.DebugContext(ctx, "analysis archived", "id", a.ID, "routes", len(a.Routes))
			return nil
		case errors.Is(err, domain.ErrInvalidRequest):
			metrics.AnalysesArchived.WithLabelValues("rejected").Inc()
			log.WarnContext(ctx, "dropping analysis event", "error", err)
			return nil
		default:
			metrics.AnalysesArchived.WithLabelValues("error").Inc()
			log.ErrorContext(ctx, "archive failed", "id", a.ID, "error", err)
			return err
		}
	})
}
