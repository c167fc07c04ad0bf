package book

import (
	"context"
	"testing"

	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn     func(ctx context.Context, id string) (dombook.Book, error)
	countFn   func(ctx context.Context) (int, error)
	putFn     func(ctx context.Context, books ...dombook.Book) error
	deleteFn  func(ctx context.Context, ids ...string) error
	reindexFn func(ctx context.Context) (int, error)
}

func (m *mockStore) Get(ctx context.Context, id string) (dombook.Book, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return dombook.Book{}, nil
}

func (m *mockStore) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockStore) Put(ctx context.Context, books ...dombook.Book) error {
	if m.putFn != nil {
		return m.putFn(ctx, books...)
	}
	return nil
}

func (m *mockStore) Delete(ctx context.Context, ids ...string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ids...)
	}
	return nil
}

func (m *mockStore) Reindex(ctx context.Context) (int, error) {
	if m.reindexFn != nil {
		return m.reindexFn(ctx)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

func mustBook(t *testing.T, id, title, isbn string) dombook.Book {
	t.Helper()
	b, err := dombook.New(id, title, isbn, "", nil, nil, nil)
	if err != nil {
		t.Fatalf("book.New: %v", err)
	}
	return b
}
