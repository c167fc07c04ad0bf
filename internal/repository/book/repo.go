package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/tejaspanchall/BookCafe-Backend/internal/db"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain"
	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
)

// store is the consumer interface for catalog writes and lookups (ISP).
type store interface {
	Get(ctx context.Context, id string) (dombook.Book, error)
	Count(ctx context.Context) (int, error)
	Put(ctx context.Context, books ...dombook.Book) error
	Delete(ctx context.Context, ids ...string) error
	Reindex(ctx context.Context) (int, error)
}

// Repo implements usecase/catalog.Repository.
type Repo struct {
	store store
}

// New creates a book repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Put creates or replaces books in one batch.
func (r *Repo) Put(ctx context.Context, books ...dombook.Book) error {
	if err := r.store.Put(ctx, books...); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return fmt.Errorf("put books: %w: %w", domain.ErrAlreadyExists, err)
		}
		return fmt.Errorf("put books: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

// Get returns a book by ID.
func (r *Repo) Get(ctx context.Context, id string) (dombook.Book, error) {
	b, err := r.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dombook.Book{}, domain.ErrNotFound
		}
		return dombook.Book{}, fmt.Errorf("get book %s: %w: %w", id, domain.ErrStorage, err)
	}
	return b, nil
}

// Delete removes books by ID. Unknown IDs are ignored.
func (r *Repo) Delete(ctx context.Context, ids ...string) error {
	if err := r.store.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("delete books: %w: %w", domain.ErrStorage, err)
	}
	return nil
}

// Count returns the number of books in the catalog.
func (r *Repo) Count(ctx context.Context) (int, error) {
	n, err := r.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w: %w", domain.ErrStorage, err)
	}
	return n, nil
}

// Reindex rebuilds the prefix search index and returns the number of indexed books.
func (r *Repo) Reindex(ctx context.Context) (int, error) {
	n, err := r.store.Reindex(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex: %w: %w", domain.ErrStorage, err)
	}
	return n, nil
}
