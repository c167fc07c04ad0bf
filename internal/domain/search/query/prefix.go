package query

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
)

// DefaultMinPrefixTokenLength keeps every token in the prefix expression.
const DefaultMinPrefixTokenLength = 1

type prefixConfig struct {
	minTokenLength int
}

// PrefixOption tunes BuildPrefixQuery.
type PrefixOption func(*prefixConfig)

// WithMinTokenLength leaves tokens shorter than n runes out of the prefix
// expression. Those tokens still take part in fuzzy matching.
func WithMinTokenLength(n int) PrefixOption {
	return func(c *prefixConfig) {
		if n > 0 {
			c.minTokenLength = n
		}
	}
}

// BuildPrefixQuery turns normalized tokens into an AND of prefix atoms.
// Each token is reduced to lower-case letters and digits; tokens that end up
// empty are dropped instead of failing the query.
func BuildPrefixQuery(tokens []string, opts ...PrefixOption) predicate.PrefixQuery {
	cfg := prefixConfig{minTokenLength: DefaultMinPrefixTokenLength}
	for _, o := range opts {
		o(&cfg)
	}

	atoms := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		atom := sanitizeAtom(tok)
		if atom == "" {
			continue
		}
		if utf8.RuneCountInString(atom) < cfg.minTokenLength {
			continue
		}
		atoms = append(atoms, atom)
	}
	if len(atoms) == 0 {
		return predicate.PrefixQuery{}
	}
	return predicate.PrefixQuery{Atoms: atoms}
}

func sanitizeAtom(tok string) string {
	var b strings.Builder
	b.Grow(len(tok))
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
