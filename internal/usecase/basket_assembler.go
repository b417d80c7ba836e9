package usecase

import (
	"slices"

	"github.com/basket-ranking/internal/domain"
)

// Assemble keeps, per (origin, category), the records ranked within the
// category's quota. Categories without a quota entry contribute nothing;
// fewer available destinations than the quota is not an error.
func Assemble(ranked []domain.RankedRecord, quota domain.Quota) ([]domain.BasketEntry, error) {
	if err := quota.Validate(); err != nil {
		return nil, err
	}

	out := make([]domain.BasketEntry, 0)
	for _, r := range ranked {
		if r.Rank <= quota.Limit(r.Category) {
			out = append(out, domain.BasketEntry{RankedRecord: r})
		}
	}

	slices.SortFunc(out, func(a, b domain.BasketEntry) int {
		return compareRanked(a.RankedRecord, b.RankedRecord)
	})
	return out, nil
}
