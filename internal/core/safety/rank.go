package safety

import (
	"cmp"
	"errors"
	"slices"

	"github.com/samirrijal/safepath/internal/core/domain"
)

// ErrNoRoutes is returned when there is nothing to rank.
var ErrNoRoutes = errors.New("no routes available")

// Rank orders routes by descending safety score. Ties keep their input order.
// The input slice is not modified.
func Rank(routes []domain.ScoredRoute) ([]domain.ScoredRoute, error) {
	if len(routes) == 0 {
		return nil, ErrNoRoutes
	}
	ranked := slices.Clone(routes)
	slices.SortStableFunc(ranked, func(a, b domain.ScoredRoute) int {
		return cmp.Compare(b.SafetyScore, a.SafetyScore)
	})
	return ranked, nil
}
