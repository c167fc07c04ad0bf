package bookcafe

import (
	"context"
	"fmt"
	"time"

	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/mode"
	"github.com/tejaspanchall/BookCafe-Backend/internal/domain/search/request"
)

// SearchOption tunes a single search.
type SearchOption func(*searchOptions)

type searchOptions struct {
	limit int
}

// Limit caps the number of returned IDs. Zero returns every match.
func Limit(n int) SearchOption {
	return func(o *searchOptions) {
		o.limit = n
	}
}

// Search returns IDs of books matching query, best match first.
//
// searchType selects the fields: "title" (or "name"), "isbn", "author" or
// "all". Unknown types search all fields. Queries that are empty or shorter
// than the configured minimum after normalization return an empty slice.
// Only storage failures are returned as errors.
func (c *Client) Search(
	ctx context.Context, query, searchType string, opts ...SearchOption,
) (ids []string, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	var so searchOptions
	for _, o := range opts {
		o(&so)
	}

	req, err := request.New(query, mode.Parse(searchType), c.minQueryLength, so.limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	ids, err = c.searchSvc.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
