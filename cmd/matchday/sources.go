package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/defeedco/matchday/pkg/datasource"
	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/lib"
)

func newSourcesCmd(deps func() *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sources",
		Short: "Manage the stored data sources",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored data sources",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a := deps()
				store, err := a.store(cmd.Context())
				if err != nil {
					return err
				}
				sources, err := store.List(cmd.Context())
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tPLUGIN\tENABLED\tKITS\tSOURCE")
				for _, ds := range sources {
					fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\n", ds.ID, ds.PluginID, ds.Enabled, len(ds.PatternKits), ds)
				}
				return w.Flush()
			},
		},
		&cobra.Command{
			Use:   "add <data-source-file>",
			Short: "Validate the data sources of a file and store them",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := deps()
				sources, err := datasource.LoadFile(args[0])
				if err != nil {
					return err
				}
				for _, ds := range sources {
					if err := a.registry.Validate(ds); err != nil {
						return fmt.Errorf("%s: %w", ds, err)
					}
				}

				store, err := a.store(cmd.Context())
				if err != nil {
					return err
				}
				for _, ds := range sources {
					if err := store.Add(cmd.Context(), ds); err != nil {
						return fmt.Errorf("add %s: %w", ds, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", ds.ID, ds)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <id>",
			Short: "Remove a stored data source",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := deps()
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("parse id: %w", err)
				}

				store, err := a.store(cmd.Context())
				if err != nil {
					return err
				}
				existing, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if existing == nil {
					return fmt.Errorf("data source '%s' not found", id)
				}
				return store.Remove(cmd.Context(), id)
			},
		},
		newSourcesExportCmd(deps),
		newSourcesImportCmd(deps),
	)

	return cmd
}

func newSourcesExportCmd(deps func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Write the stored data sources as an OPML subscription list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			sources, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			return datasource.ToOPML("matchday data sources", sources).Write(cmd.OutOrStdout())
		},
	}
}

func newSourcesImportCmd(deps func() *app) *cobra.Command {
	var kitsFile string

	cmd := &cobra.Command{
		Use:   "import <opml-file>",
		Short: "Store one Blogger data source per feed of an OPML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()

			kits, err := loadKits(kitsFile)
			if err != nil {
				return err
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open OPML: %w", err)
			}
			defer f.Close()
			doc, err := lib.ParseOPML(f)
			if err != nil {
				return err
			}

			sources, rejected := datasource.FromOPML(doc, a.blogger.ID(), kits)
			for feedURL, err := range rejected {
				a.logger.Warn().Err(err).Str("feed_url", feedURL).Msg("skipping feed")
			}

			store, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			for _, ds := range sources {
				if err := a.registry.Validate(ds); err != nil {
					a.logger.Warn().Err(err).Str("feed_url", ds.BaseURL).Msg("skipping feed")
					continue
				}
				if err := store.Add(cmd.Context(), ds); err != nil {
					return fmt.Errorf("add %s: %w", ds, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s %s\n", ds.ID, ds)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kitsFile, "kits", "", "YAML or JSON file with the pattern kits for every imported feed")
	_ = cmd.MarkFlagRequired("kits")

	return cmd
}

// loadKits reads a list of pattern kit definitions.
func loadKits(path string) ([]extract.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read kits: %w", err)
	}
	var defs []extract.Definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("decode kits: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no pattern kits in '%s'", path)
	}
	return defs, nil
}
