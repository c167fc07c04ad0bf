package search

import (
	"context"
	"testing"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	matchFn func(ctx context.Context, plan *predicate.Plan) ([]db.MatchRow, error)
}

func (m *mockStore) Match(ctx context.Context, plan *predicate.Plan) ([]db.MatchRow, error) {
	if m.matchFn != nil {
		return m.matchFn(ctx, plan)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	repo := New(ms)
	return repo, ms
}

func titlePlan() *predicate.Plan {
	return &predicate.Plan{Text: &predicate.TextClause{
		Query:   predicate.PrefixQuery{Atoms: []string{"dune"}},
		Targets: []predicate.TextTarget{predicate.TargetTitle},
	}}
}
