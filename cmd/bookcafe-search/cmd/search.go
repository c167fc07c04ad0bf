package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	bookcafe "github.com/tejaspanchall/BookCafe-Backend"
	logpkg "github.com/tejaspanchall/BookCafe-Backend/internal/logger"
)

// searchOptions holds CLI flags for search.
type searchOptions struct {
	searchType string // "title", "isbn", "author", "all"
	limit      int
	format     string // "text", "json", "ids"
}

func newSearchCmd(a *app) *cobra.Command {
	var opts searchOptions

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Long: `Search the catalog and print matching books, best match first.

Exact matches rank before prefix matches, prefix matches before
word-start matches. Queries shorter than search.min_query_length
print nothing.

Examples:
  bookcafe-search search orwell --type author
  bookcafe-search search "978-0-452-28423-4" --type isbn
  bookcafe-search search "great gatsby" --limit 5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd.Context(), cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.searchType, "type", "t", bookcafe.SearchAll, "Fields to search: title, isbn, author, all")
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "Maximum number of results (default: search.max_results)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "text", "Output format: text, json, ids")

	return cmd
}

func (a *app) runSearch(ctx context.Context, cmd *cobra.Command, query string, opts searchOptions) error {
	switch opts.format {
	case "text", "json", "ids":
	default:
		return fmt.Errorf("unknown format %q (want text, json or ids)", opts.format)
	}
	logger := logpkg.FromContext(ctx)

	limit := opts.limit
	if limit <= 0 {
		limit = a.cfg.Search.MaxResults
	}

	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ids, err := client.Search(ctx, query, opts.searchType, bookcafe.Limit(limit))
	if err != nil {
		return err
	}
	logger.Debug("Search completed",
		zap.String("query", query),
		zap.String("type", opts.searchType),
		zap.Int("results", len(ids)),
	)

	out := cmd.OutOrStdout()
	if opts.format == "ids" {
		for _, id := range ids {
			if _, err := fmt.Fprintln(out, id); err != nil {
				return err
			}
		}
		return nil
	}

	books := make([]bookcafe.Book, 0, len(ids))
	for _, id := range ids {
		b, err := client.Get(ctx, id)
		if err != nil {
			return err
		}
		books = append(books, b)
	}

	if opts.format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(books)
	}
	for _, b := range books {
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", b.ID, b.Title, authorNames(b)); err != nil {
			return err
		}
	}
	return nil
}

func authorNames(b bookcafe.Book) string {
	names := make([]string, len(b.Authors))
	for i, au := range b.Authors {
		names[i] = au.Name
	}
	return strings.Join(names, ", ")
}
