package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPluginsCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plugins [query]",
		Short: "List the registered plugins, optionally filtered by a fuzzy query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTITLE\tENABLED\tDESCRIPTION")
			for _, p := range a.registry.Search(query) {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", p.ID(), p.Title(), p.Enabled(), p.Description())
			}
			return w.Flush()
		},
	}
}
