package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newReindexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the prefix search index",
		Long: `Rebuild the prefix search index from the catalog, including author
names, and drop cached results. Also restores a missing index; until
then searches fall back to matching live fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			n, err := client.Reindex(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "indexed %d books\n", n)
			return err
		},
	}
}
