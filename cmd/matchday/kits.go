package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/defeedco/matchday/pkg/datasource"
	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/match"
)

func newKitsCmd(deps func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kits",
		Short: "Work with the pattern kits of data sources",
	}
	cmd.AddCommand(newKitsCheckCmd(deps))
	return cmd
}

func newKitsCheckCmd(deps func() *app) *cobra.Command {
	var (
		text     string
		textFile string
	)

	cmd := &cobra.Command{
		Use:   "check <data-source-file>",
		Short: "Compile the pattern kits of a data source file and optionally run them over a sample post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			out := cmd.OutOrStdout()

			sources, err := datasource.LoadFile(args[0])
			if err != nil {
				return err
			}

			if textFile != "" {
				data, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("read sample: %w", err)
				}
				text = string(data)
			}

			var errs []error
			for _, ds := range sources {
				if err := a.registry.Validate(ds); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", ds, err))
					fmt.Fprintf(out, "FAIL %s: %v\n", ds, err)
					continue
				}
				fmt.Fprintf(out, "ok   %s (%d kits)\n", ds, len(ds.PatternKits))

				if text == "" {
					continue
				}
				parser, err := match.NewParser(ds.PatternKits)
				if err != nil {
					return err
				}
				post := feed.RawPost{ID: "sample", Body: text}
				for m, err := range parser.Parse(cmd.Context(), post) {
					if err != nil {
						fmt.Fprintf(out, "  error: %v\n", err)
						continue
					}
					data, err := json.MarshalIndent(m, "  ", "  ")
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "  %s\n", data)
				}
			}

			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Sample post body to extract from")
	cmd.Flags().StringVar(&textFile, "text-file", "", "File holding a sample post body")

	return cmd
}
