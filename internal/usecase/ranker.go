package usecase

import (
	"cmp"
	"slices"
	"strings"

	"github.com/basket-ranking/internal/domain"
)

type rankGroup struct {
	origin   string
	category domain.Category
}

// Rank groups records by (origin, category), drops everything that is not
// OK and numbers each group 1..k by ascending distance. Ties go to the
// smaller destination ID. The result is ordered by (origin, category, rank)
// and the input slice is left untouched.
func Rank(records []domain.DistanceRecord) []domain.RankedRecord {
	groups := make(map[rankGroup][]domain.DistanceRecord)
	for _, r := range records {
		if !r.IsRankable() {
			continue
		}
		key := rankGroup{origin: r.OriginID, category: r.Category}
		groups[key] = append(groups[key], r)
	}

	keys := make([]rankGroup, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b rankGroup) int {
		if c := strings.Compare(a.origin, b.origin); c != 0 {
			return c
		}
		return strings.Compare(string(a.category), string(b.category))
	})

	out := make([]domain.RankedRecord, 0, len(records))
	for _, k := range keys {
		group := groups[k]
		slices.SortFunc(group, func(a, b domain.DistanceRecord) int {
			if c := cmp.Compare(*a.Distance, *b.Distance); c != 0 {
				return c
			}
			return strings.Compare(a.DestinationID, b.DestinationID)
		})
		for i, r := range group {
			out = append(out, domain.RankedRecord{DistanceRecord: r, Rank: i + 1})
		}
	}

	return out
}

// compareRanked orders by origin, category, then rank.
func compareRanked(a, b domain.RankedRecord) int {
	if c := strings.Compare(a.OriginID, b.OriginID); c != 0 {
		return c
	}
	if c := strings.Compare(string(a.Category), string(b.Category)); c != 0 {
		return c
	}
	return cmp.Compare(a.Rank, b.Rank)
}
