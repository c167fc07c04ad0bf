package query

import "strings"

// PrefixCoverage checks that every atom is a prefix of some word in folded
// and scores by the share of words covered, so denser matches rank higher.
// Returns false when any atom misses.
func PrefixCoverage(atoms []string, folded string) (float64, bool) {
	words := strings.Fields(folded)
	if len(words) == 0 || len(atoms) == 0 {
		return 0, false
	}
	covered := make(map[int]bool, len(atoms))
	for _, a := range atoms {
		hit := false
		for i, w := range words {
			if strings.HasPrefix(w, a) {
				covered[i] = true
				hit = true
			}
		}
		if !hit {
			return 0, false
		}
	}
	return float64(len(covered)) / float64(len(words)), true
}
