package catalog

import (
	"context"

	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
)

// Repository defines the storage contract for catalog maintenance.
type Repository interface {
	Get(ctx context.Context, id string) (dombook.Book, error)
	Count(ctx context.Context) (int, error)
	Put(ctx context.Context, books ...dombook.Book) error
	Delete(ctx context.Context, ids ...string) error
	Reindex(ctx context.Context) (int, error)
}

// Invalidator drops cached search results.
type Invalidator interface {
	Invalidate(ctx context.Context) (int, error)
}
