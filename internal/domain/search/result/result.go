package result

import "github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"

// TextOnlyTier ranks candidates found only by the full-text clause.
const TextOnlyTier = query.PriorityTextSearch

// Candidate is one matched book before ranking.
type Candidate struct {
	id     string
	tier   int
	score  float64
	scored bool
}

// New creates a candidate. Tiers outside 1..TextOnlyTier are clamped to TextOnlyTier.
func New(id string, tier int, score float64, scored bool) Candidate {
	if tier < 1 || tier > TextOnlyTier {
		tier = TextOnlyTier
	}
	return Candidate{id: id, tier: tier, score: score, scored: scored}
}

// ID returns the book identifier.
func (c *Candidate) ID() string { return c.id }

// Tier returns the match-quality bucket (1 = exact, lower wins).
func (c *Candidate) Tier() int { return c.tier }

// Score returns the engine relevance score; meaningful only when Scored.
func (c *Candidate) Score() float64 { return c.score }

// Scored reports whether the engine produced a relevance score.
func (c *Candidate) Scored() bool { return c.scored }

// Merge combines two candidates for the same book: the better tier and the
// higher score win.
func (c Candidate) Merge(o Candidate) Candidate {
	out := c
	if o.tier < out.tier {
		out.tier = o.tier
	}
	switch {
	case o.scored && !out.scored:
		out.score, out.scored = o.score, true
	case o.scored && o.score > out.score:
		out.score = o.score
	}
	return out
}
