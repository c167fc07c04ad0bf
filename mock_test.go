package bookcafe

import (
	"context"

	dombatch "github.com/tejaspanchall/BookCafe-Backend/internal/domain/batch"
	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
	healthuc "github.com/tejaspanchall/BookCafe-Backend/internal/usecase/health"
)

// --- searchUseCase mock ---

type mockSearchUC struct {
	searchFn func(ctx context.Context, req *request.Request) ([]string, error)
}

func (m *mockSearchUC) Search(ctx context.Context, req *request.Request) ([]string, error) {
	return m.searchFn(ctx, req)
}

// --- catalogUseCase mock ---

type mockCatalogUC struct {
	getFn        func(ctx context.Context, id string) (dombook.Book, error)
	countFn      func(ctx context.Context) (int, error)
	putFn        func(ctx context.Context, books ...dombook.Book) error
	importFn     func(ctx context.Context, books []dombook.Book) []dombatch.Result
	deleteFn     func(ctx context.Context, ids ...string) error
	reindexFn    func(ctx context.Context) (int, error)
	invalidateFn func(ctx context.Context) (int, error)
}

func (m *mockCatalogUC) Get(ctx context.Context, id string) (dombook.Book, error) {
	return m.getFn(ctx, id)
}

func (m *mockCatalogUC) Count(ctx context.Context) (int, error) {
	return m.countFn(ctx)
}

func (m *mockCatalogUC) Put(ctx context.Context, books ...dombook.Book) error {
	return m.putFn(ctx, books...)
}

func (m *mockCatalogUC) Import(ctx context.Context, books []dombook.Book) []dombatch.Result {
	return m.importFn(ctx, books)
}

func (m *mockCatalogUC) Delete(ctx context.Context, ids ...string) error {
	return m.deleteFn(ctx, ids...)
}

func (m *mockCatalogUC) Reindex(ctx context.Context) (int, error) {
	return m.reindexFn(ctx)
}

func (m *mockCatalogUC) InvalidateCache(ctx context.Context) (int, error) {
	return m.invalidateFn(ctx)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

func newMockClient(s searchUseCase, c catalogUseCase) *Client {
	return &Client{
		searchSvc:      s,
		catalogSvc:     c,
		minQueryLength: DefaultMinQueryLength,
	}
}
