package query

import (
	"strings"
	"unicode"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
)

// Normalize strips every rune that is not a letter, digit or whitespace,
// collapses whitespace and splits into terms. Case is preserved.
// Returns nil when nothing is left.
func Normalize(raw string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsSpace(r) {
			return r
		}
		return -1
	}, raw)

	terms := strings.Fields(cleaned)
	if len(terms) == 0 {
		return nil
	}
	return terms
}

// Fold is the comparison form shared by queries and stored fields:
// normalized, single-spaced, lower-case.
func Fold(s string) string {
	return strings.ToLower(strings.Join(Normalize(s), " "))
}

// FoldISBN folds s and drops the remaining spaces, so "978-0-13 468599-1"
// and "9780134685991" compare equal. Dashes are already gone after Normalize.
func FoldISBN(s string) string {
	return strings.ReplaceAll(Fold(s), " ", "")
}

// FoldField folds a stored value the way conditions on field f expect.
func FoldField(f predicate.Field, value string) string {
	if f == predicate.ISBN {
		return FoldISBN(value)
	}
	return Fold(value)
}

// MatchField evaluates cond against a raw (unfolded) field value.
func MatchField(cond predicate.Condition, value string) bool {
	return cond.Matches(FoldField(cond.Field, value))
}
