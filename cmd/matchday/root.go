package main

import (
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var envFile string
	var a *app

	root := &cobra.Command{
		Use:           "matchday",
		Short:         "Extract football match recordings from blog feeds",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp(envFile)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to .env file")

	deps := func() *app { return a }
	root.AddCommand(
		newSnapshotCmd(deps),
		newRefreshCmd(deps),
		newKitsCmd(deps),
		newPluginsCmd(deps),
		newSourcesCmd(deps),
	)

	return root
}
