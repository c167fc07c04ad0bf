package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/result"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	Match(ctx context.Context, plan *predicate.Plan) ([]db.MatchRow, error)
}

// Repo implements usecase/search.Repository.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Match runs a plan against the catalog and returns one candidate per
// matched book. Adapter sentinels are translated to domain errors.
func (r *Repo) Match(ctx context.Context, plan *predicate.Plan) ([]result.Candidate, error) {
	rows, err := r.store.Match(ctx, plan)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrIndexUnavailable):
			return nil, fmt.Errorf("match: %w: %w", domain.ErrIndexUnavailable, err)
		case errors.Is(err, db.ErrUnsupportedField):
			return nil, fmt.Errorf("match: %w: %w", domain.ErrUnsupportedField, err)
		default:
			return nil, fmt.Errorf("match: %w: %w", domain.ErrStorage, err)
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	out := make([]result.Candidate, 0, len(rows))
	for _, row := range rows {
		out = append(out, result.New(row.ID, row.Tier, row.Score, row.Scored))
	}
	return out, nil
}
