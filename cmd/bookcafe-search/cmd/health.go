package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the catalog store and result cache",
		Long: `Ping the catalog store and the shared result cache. Prints "ok",
"degraded" (cache down, search still works) or "error" (catalog down)
followed by one line per component. Exits non-zero on "error".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			client, err := a.client(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			h := client.Health(ctx)
			out := cmd.OutOrStdout()
			if _, err := fmt.Fprintln(out, h.Status); err != nil {
				return err
			}
			components := make([]string, 0, len(h.Checks))
			for name := range h.Checks {
				components = append(components, name)
			}
			sort.Strings(components)
			for _, name := range components {
				if _, err := fmt.Fprintf(out, "  %s: %s\n", name, h.Checks[name]); err != nil {
					return err
				}
			}

			if h.Status == "error" {
				return fmt.Errorf("catalog unhealthy")
			}
			return nil
		},
	}
}
