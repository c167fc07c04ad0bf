package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	dombatch "github.com/tejaspanchall/BookCafe-Backend/internal/domain/batch"
	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
	"github.com/tejaspanchall/BookCafe-Backend/internal/metrics"
)

// DefaultImportChunkSize is the number of books written per storage call during Import.
const DefaultImportChunkSize = 100

// Service handles catalog mutations. Every successful mutation drops the
// search result cache so rankings never outlive the data they came from.
type Service struct {
	repo      Repository
	cache     Invalidator
	chunkSize int
	logger    *zap.Logger
}

// New creates a catalog service. cache can be nil.
func New(repo Repository, cache Invalidator, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, cache: cache, chunkSize: DefaultImportChunkSize, logger: logger}
}

// WithImportChunkSize configures how many books Import writes at once.
func (s *Service) WithImportChunkSize(size int) *Service {
	if size > 0 {
		s.chunkSize = size
	}
	return s
}

// Get returns a book by ID.
func (s *Service) Get(ctx context.Context, id string) (dombook.Book, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return dombook.Book{}, fmt.Errorf("get book: %w", err)
	}
	return b, nil
}

// Count returns the number of books in the catalog.
func (s *Service) Count(ctx context.Context) (int, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return n, nil
}

// Put creates or replaces books atomically.
func (s *Service) Put(ctx context.Context, books ...dombook.Book) error {
	if len(books) == 0 {
		return nil
	}
	if err := s.repo.Put(ctx, books...); err != nil {
		s.record("put", err)
		return fmt.Errorf("put books: %w", err)
	}
	s.record("put", nil)
	s.invalidate(ctx)
	return nil
}

// Import writes books in chunks and reports the outcome per book. A failed
// chunk is retried one book at a time so a single bad record does not sink
// its neighbours.
func (s *Service) Import(ctx context.Context, books []dombook.Book) []dombatch.Result {
	results := make([]dombatch.Result, len(books))
	written := 0

	for start := 0; start < len(books); start += s.chunkSize {
		end := min(start+s.chunkSize, len(books))
		chunk := books[start:end]

		err := s.repo.Put(ctx, chunk...)
		if err == nil {
			for i := start; i < end; i++ {
				results[i] = dombatch.NewOK(books[i].ID())
			}
			written += len(chunk)
			continue
		}
		s.logger.Warn("Import chunk failed, retrying per book",
			zap.Int("offset", start), zap.Int("books", len(chunk)), zap.Error(err))

		for i := start; i < end; i++ {
			if err := s.repo.Put(ctx, books[i]); err != nil {
				results[i] = dombatch.NewError(books[i].ID(), fmt.Errorf("put book: %w", err))
				continue
			}
			results[i] = dombatch.NewOK(books[i].ID())
			written++
		}
	}

	ok, failed := dombatch.Tally(results)
	s.logger.Info("Catalog import finished", zap.Int("ok", ok), zap.Int("failed", failed))
	if failed > 0 {
		metrics.CatalogWritesTotal.WithLabelValues("import", "error").Add(float64(failed))
	}
	if written > 0 {
		metrics.CatalogWritesTotal.WithLabelValues("import", "ok").Add(float64(written))
		s.invalidate(ctx)
	}
	return results
}

// Delete removes books by ID.
func (s *Service) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := s.repo.Delete(ctx, ids...); err != nil {
		s.record("delete", err)
		return fmt.Errorf("delete books: %w", err)
	}
	s.record("delete", nil)
	s.invalidate(ctx)
	return nil
}

// Reindex rebuilds the prefix search index from live records and returns
// the number of indexed books.
func (s *Service) Reindex(ctx context.Context) (int, error) {
	n, err := s.repo.Reindex(ctx)
	if err != nil {
		s.record("reindex", err)
		return 0, fmt.Errorf("reindex: %w", err)
	}
	s.record("reindex", nil)
	s.logger.Info("Search index rebuilt", zap.Int("books", n))
	s.invalidate(ctx)
	return n, nil
}

// InvalidateCache drops cached search results on demand.
func (s *Service) InvalidateCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	n, err := s.cache.Invalidate(ctx)
	if err != nil {
		return n, fmt.Errorf("invalidate cache: %w", err)
	}
	return n, nil
}

// invalidate runs after a write; cache faults never fail the write.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("Failed to invalidate search cache", zap.Error(err))
	}
}

func (s *Service) record(op string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
		s.logger.Error("Catalog write failed", zap.String("op", op), zap.Error(err))
	}
	metrics.CatalogWritesTotal.WithLabelValues(op, status).Inc()
}
