package predicate

import (
	"strings"
)

// Field is a live book field a fuzzy condition compares against.
type Field string

// Searchable fields.
const (
	Title  Field = "title"
	ISBN   Field = "isbn"
	Author Field = "author"
	// Description exists so adapters can reject it; no strategy targets it.
	Description Field = "description"
)

// IsValid checks if the field is one of the supported values.
func (f Field) IsValid() bool {
	return f == Title || f == ISBN || f == Author || f == Description
}

// Kind is the comparison a fuzzy condition performs on folded values.
type Kind int

// Condition kinds.
const (
	Exact Kind = iota + 1
	Prefix
	WordBoundary
	AllWordsBoundary
	Contains
)

func (k Kind) String() string {
	switch k {
	case Exact:
		return "exact"
	case Prefix:
		return "prefix"
	case WordBoundary:
		return "word_boundary"
	case AllWordsBoundary:
		return "all_words_boundary"
	case Contains:
		return "contains"
	default:
		return "unknown"
	}
}

// Condition is one fuzzy atom: a comparison of folded terms against a folded field.
// Terms holds a single folded query for every kind except AllWordsBoundary,
// where each term must match independently.
type Condition struct {
	Field    Field
	Kind     Kind
	Terms    []string
	Priority int
}

// Matches reports whether the condition holds for an already folded field value.
// A word starts at the beginning of the value or right after a space.
func (c Condition) Matches(folded string) bool {
	if len(c.Terms) == 0 || folded == "" {
		return false
	}
	switch c.Kind {
	case Exact:
		return folded == c.Terms[0]
	case Prefix:
		return strings.HasPrefix(folded, c.Terms[0])
	case WordBoundary:
		return atWordStart(folded, c.Terms[0])
	case Contains:
		return strings.Contains(folded, c.Terms[0])
	case AllWordsBoundary:
		for _, t := range c.Terms {
			if !atWordStart(folded, t) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func atWordStart(folded, term string) bool {
	if term == "" {
		return false
	}
	return strings.HasPrefix(folded, term) || strings.Contains(folded, " "+term)
}

// PrefixQuery is an AND of prefix atoms. Atoms are sanitized lower-case
// letters and digits only.
type PrefixQuery struct {
	Atoms []string
}

// IsEmpty reports whether the query has no atoms. An empty query matches nothing.
func (q PrefixQuery) IsEmpty() bool { return len(q.Atoms) == 0 }

// String renders a debug form like "atl:* & clo:*". Adapters must bind atoms
// as parameters instead of splicing this string into engine syntax.
func (q PrefixQuery) String() string {
	parts := make([]string, len(q.Atoms))
	for i, a := range q.Atoms {
		parts[i] = a + ":*"
	}
	return strings.Join(parts, " & ")
}

// TextTarget selects what a full-text clause runs against.
type TextTarget string

// Text targets.
const (
	// TargetIndex is the precomputed per-book blob (title, ISBN, author names).
	TargetIndex TextTarget = "index"
	// TargetTitle tokenizes the live title.
	TargetTitle TextTarget = "title"
	// TargetAuthor tokenizes each live author name; all atoms must hit the same author.
	TargetAuthor TextTarget = "author"
)

// TextClause is a prefix query evaluated against any of its targets (OR).
type TextClause struct {
	Query   PrefixQuery
	Targets []TextTarget
}

// Plan is the full candidate predicate of one search: the text clause OR any fuzzy condition.
type Plan struct {
	Text  *TextClause
	Fuzzy []Condition
}

// IsEmpty reports whether the plan can match anything at all.
func (p *Plan) IsEmpty() bool {
	if p == nil {
		return true
	}
	return !p.HasText() && len(p.Fuzzy) == 0
}

// HasText reports whether the plan carries a non-empty text clause.
func (p *Plan) HasText() bool {
	return p != nil && p.Text != nil && !p.Text.Query.IsEmpty() && len(p.Text.Targets) > 0
}

// UsesIndex reports whether the text clause depends on the precomputed index.
func (p *Plan) UsesIndex() bool {
	if !p.HasText() {
		return false
	}
	for _, t := range p.Text.Targets {
		if t == TargetIndex {
			return true
		}
	}
	return false
}

// WithoutIndex returns a copy whose text clause targets live title and author
// fields instead of the precomputed index. Fuzzy conditions are kept as is.
func (p *Plan) WithoutIndex() *Plan {
	out := &Plan{Fuzzy: append([]Condition(nil), p.Fuzzy...)}
	if p.Text == nil {
		return out
	}

	targets := make([]TextTarget, 0, len(p.Text.Targets)+1)
	seen := make(map[TextTarget]bool)
	add := func(t TextTarget) {
		if !seen[t] {
			seen[t] = true
			targets = append(targets, t)
		}
	}
	for _, t := range p.Text.Targets {
		if t == TargetIndex {
			add(TargetTitle)
			add(TargetAuthor)
			continue
		}
		add(t)
	}

	out.Text = &TextClause{
		Query:   PrefixQuery{Atoms: append([]string(nil), p.Text.Query.Atoms...)},
		Targets: targets,
	}
	return out
}

// FieldConditions returns the fuzzy conditions that compare against f.
func (p *Plan) FieldConditions(f Field) []Condition {
	var out []Condition
	for _, c := range p.Fuzzy {
		if c.Field == f {
			out = append(out, c)
		}
	}
	return out
}
