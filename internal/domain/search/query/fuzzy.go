package query

import (
	"strings"
	"unicode/utf8"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
)

// Fuzzy condition priorities (lower wins).
const (
	PriorityExact      = 1
	PriorityPrefix     = 2
	PriorityWordStart  = 3
	PriorityAllWords   = 4
	PriorityTextSearch = 5
)

// BuildFuzzyConditions returns the fallback predicates for one field in
// ascending priority order. Title and author use word-start matching;
// ISBN uses containment on dash-free forms. Unsupported fields yield nil.
func BuildFuzzyConditions(q string, f predicate.Field) []predicate.Condition {
	switch f {
	case predicate.ISBN:
		return isbnConditions(q)
	case predicate.Title, predicate.Author:
		return textConditions(q, f)
	default:
		return nil
	}
}

func isbnConditions(q string) []predicate.Condition {
	folded := FoldISBN(q)
	if folded == "" {
		return nil
	}
	return []predicate.Condition{
		{Field: predicate.ISBN, Kind: predicate.Exact, Terms: []string{folded}, Priority: PriorityExact},
		{Field: predicate.ISBN, Kind: predicate.Prefix, Terms: []string{folded}, Priority: PriorityPrefix},
		{Field: predicate.ISBN, Kind: predicate.Contains, Terms: []string{folded}, Priority: PriorityWordStart},
	}
}

func textConditions(q string, f predicate.Field) []predicate.Condition {
	folded := Fold(q)
	if folded == "" {
		return nil
	}

	conds := []predicate.Condition{
		{Field: f, Kind: predicate.Exact, Terms: []string{folded}, Priority: PriorityExact},
		{Field: f, Kind: predicate.Prefix, Terms: []string{folded}, Priority: PriorityPrefix},
		{Field: f, Kind: predicate.WordBoundary, Terms: []string{folded}, Priority: PriorityWordStart},
	}

	words := strings.Split(folded, " ")
	if len(words) < 2 {
		return conds
	}
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) > 1 {
			terms = append(terms, w)
		}
	}
	if len(terms) == 0 {
		return conds
	}
	return append(conds, predicate.Condition{
		Field: f, Kind: predicate.AllWordsBoundary, Terms: terms, Priority: PriorityAllWords,
	})
}
