package search

import (
	"sort"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/result"
)

// rank merges candidates per book and orders them by tier, then score
// (higher first), then ID. Unscored candidates sort after scored ones of
// the same tier.
func rank(cands []result.Candidate) []string {
	if len(cands) == 0 {
		return nil
	}

	byID := make(map[string]result.Candidate, len(cands))
	for _, c := range cands {
		if prev, ok := byID[c.ID()]; ok {
			byID[c.ID()] = prev.Merge(c)
			continue
		}
		byID[c.ID()] = c
	}

	merged := make([]result.Candidate, 0, len(byID))
	for _, c := range byID {
		merged = append(merged, c)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		a, b := &merged[i], &merged[j]
		if a.Tier() != b.Tier() {
			return a.Tier() < b.Tier()
		}
		if a.Scored() != b.Scored() {
			return a.Scored()
		}
		if a.Score() != b.Score() {
			return a.Score() > b.Score()
		}
		return a.ID() < b.ID()
	})

	ids := make([]string, len(merged))
	for i := range merged {
		ids[i] = merged[i].ID()
	}
	return ids
}
