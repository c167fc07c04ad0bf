package search

import (
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/mode"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/query"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
)

// buildPlan dispatches to the field strategy for the request mode.
// Unknown modes search everything.
func (s *Service) buildPlan(req *request.Request) *predicate.Plan {
	switch req.Mode() {
	case mode.Title:
		return s.searchByTitle(req)
	case mode.Author:
		return s.searchByAuthor(req)
	case mode.ISBN:
		return searchByISBN(req)
	default:
		return s.searchAll(req)
	}
}

// searchByTitle: prefix words on the live title plus title fuzzy conditions.
func (s *Service) searchByTitle(req *request.Request) *predicate.Plan {
	return &predicate.Plan{
		Text:  s.textClause(req, predicate.TargetTitle),
		Fuzzy: query.BuildFuzzyConditions(req.Normalized(), predicate.Title),
	}
}

// searchByAuthor matches author names only, so a title hit never
// qualifies a book on its own.
func (s *Service) searchByAuthor(req *request.Request) *predicate.Plan {
	return &predicate.Plan{
		Text:  s.textClause(req, predicate.TargetAuthor),
		Fuzzy: query.BuildFuzzyConditions(req.Normalized(), predicate.Author),
	}
}

// searchByISBN is fuzzy only; ISBNs are not tokenized text.
func searchByISBN(req *request.Request) *predicate.Plan {
	return &predicate.Plan{
		Fuzzy: query.BuildFuzzyConditions(req.Normalized(), predicate.ISBN),
	}
}

// searchAll uses the precomputed index over title, ISBN and authors, plus
// fuzzy conditions on the same three fields. Descriptions are never searched.
func (s *Service) searchAll(req *request.Request) *predicate.Plan {
	q := req.Normalized()
	fuzzy := query.BuildFuzzyConditions(q, predicate.Title)
	fuzzy = append(fuzzy, query.BuildFuzzyConditions(q, predicate.ISBN)...)
	fuzzy = append(fuzzy, query.BuildFuzzyConditions(q, predicate.Author)...)
	return &predicate.Plan{
		Text:  s.textClause(req, predicate.TargetIndex),
		Fuzzy: fuzzy,
	}
}

// textClause returns nil when no token survives prefix sanitizing.
func (s *Service) textClause(req *request.Request, targets ...predicate.TextTarget) *predicate.TextClause {
	pq := query.BuildPrefixQuery(req.Tokens(), query.WithMinTokenLength(s.minPrefixTokenLength))
	if pq.IsEmpty() {
		return nil
	}
	return &predicate.TextClause{Query: pq, Targets: targets}
}
