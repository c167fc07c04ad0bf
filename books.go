package bookcafe

import (
	"context"
	"fmt"
	"time"

	dombatch "github.com/tejaspanchall/BookCafe-Backend/internal/domain/batch"
	dombook "github.com/tejaspanchall/BookCafe-Backend/internal/domain/book"
)

// Get returns a book by ID.
func (c *Client) Get(ctx context.Context, id string) (b Book, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	out, err := c.catalogSvc.Get(ctx, id)
	if err != nil {
		return Book{}, fmt.Errorf("get: %w", err)
	}
	return fromInternalBook(out), nil
}

// Count returns the number of books in the catalog.
func (c *Client) Count(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", start, err) }()

	n, err = c.catalogSvc.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Put creates or replaces books in one transaction and keeps the search
// index in sync. Cached search results are dropped afterwards.
func (c *Client) Put(ctx context.Context, books ...Book) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("put", start, err) }()

	items := make([]dombook.Book, 0, len(books))
	for _, b := range books {
		item, err := toInternalBook(b)
		if err != nil {
			return fmt.Errorf("put: %w", err)
		}
		items = append(items, item)
	}

	if err = c.catalogSvc.Put(ctx, items...); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	return nil
}

// Import writes books in chunks and reports the outcome per book.
// Invalid books are reported without stopping the rest.
func (c *Client) Import(ctx context.Context, books []Book) []BatchResult {
	start := time.Now()

	results := make([]dombatch.Result, len(books))
	valid := make([]dombook.Book, 0, len(books))
	positions := make([]int, 0, len(books))
	for i, b := range books {
		item, err := toInternalBook(b)
		if err != nil {
			results[i] = dombatch.NewError(b.ID, err)
			continue
		}
		valid = append(valid, item)
		positions = append(positions, i)
	}

	for j, r := range c.catalogSvc.Import(ctx, valid) {
		results[positions[j]] = r
	}

	_, failed := dombatch.Tally(results)
	var err error
	if failed > 0 {
		err = fmt.Errorf("import: %d of %d books failed", failed, len(books))
	}
	c.obs.observe("import", start, err)

	return fromBatchResults(results)
}

// Delete removes books by ID. Missing IDs are ignored.
func (c *Client) Delete(ctx context.Context, ids ...string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("delete", start, err) }()

	if err = c.catalogSvc.Delete(ctx, ids...); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

// Reindex rebuilds the prefix search index from the catalog and returns
// the number of indexed books. It also restores a dropped index.
func (c *Client) Reindex(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("reindex", start, err) }()

	n, err = c.catalogSvc.Reindex(ctx)
	if err != nil {
		return 0, fmt.Errorf("reindex: %w", err)
	}
	return n, nil
}

// InvalidateCache drops every cached search result and returns the number
// of shared cache entries removed.
func (c *Client) InvalidateCache(ctx context.Context) (n int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("invalidate_cache", start, err) }()

	n, err = c.catalogSvc.InvalidateCache(ctx)
	if err != nil {
		return n, fmt.Errorf("invalidate cache: %w", err)
	}
	return n, nil
}
