package search

import (
	"context"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/predicate"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/result"
)

// Repository defines the storage contract for search operations.
type Repository interface {
	Match(ctx context.Context, plan *predicate.Plan) ([]result.Candidate, error)
}
