package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	bookcafe "github.com/tejaspanchall/BookCafe-Backend"
	logpkg "github.com/tejaspanchall/BookCafe-Backend/internal/logger"
)

// corpusFile is the YAML layout accepted by load.
type corpusFile struct {
	Books []bookcafe.Book `yaml:"books"`
}

func newLoadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "load <file.yaml>",
		Short: "Load books from a YAML file into the catalog",
		Long: `Load creates or replaces the books listed in a YAML file:

  books:
    - id: "1"
      title: "1984"
      isbn: "978-0-452-28423-4"
      authors:
        - {id: "a1", name: "George Orwell"}

Books that fail validation or reuse another book's ISBN are reported
and skipped; the rest are written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLoad(cmd.Context(), cmd, args[0])
		},
	}
}

func readCorpus(path string) ([]bookcafe.Book, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var f corpusFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return f.Books, nil
}

func (a *app) runLoad(ctx context.Context, cmd *cobra.Command, path string) error {
	logger := logpkg.FromContext(ctx)

	books, err := readCorpus(path)
	if err != nil {
		return err
	}

	client, err := a.client(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	failed := 0
	for _, r := range client.Import(ctx, books) {
		if r.OK {
			continue
		}
		failed++
		logger.Warn("Book rejected", zap.String("id", r.ID), zap.Error(r.Err))
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.ID, r.Err)
	}

	if _, err := fmt.Fprintf(cmd.OutOrStdout(), "loaded %d of %d books\n", len(books)-failed, len(books)); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d books rejected", failed)
	}
	return nil
}
