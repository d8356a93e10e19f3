package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/defeedco/matchday/pkg/match"
	"github.com/defeedco/matchday/pkg/refresh"
)

func newRefreshCmd(deps func() *app) *cobra.Command {
	var (
		watch   bool
		out     string
		logOnly bool
	)

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Refresh every stored data source, once or on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			ctx := cmd.Context()

			store, err := a.store(ctx)
			if err != nil {
				return err
			}

			var sink refresh.Sink[*match.Match]
			switch {
			case logOnly:
				sink = refresh.NewLogSink[*match.Match](a.logger)
			case out == "-":
				sink = refresh.NewJSONLinesSink[*match.Match](cmd.OutOrStdout())
			default:
				f, err := os.OpenFile(out, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
				if err != nil {
					return fmt.Errorf("open output: %w", err)
				}
				defer f.Close()
				sink = refresh.NewJSONLinesSink[*match.Match](f)
			}

			r := refresh.New[*match.Match](a.logger, store, a.registry, sink, a.cfg.Refresh)
			defer r.Shutdown()

			if watch {
				if err := r.Start(ctx); err != nil {
					return err
				}
				<-ctx.Done()
				a.logger.Info().Msg("shutting down")
				return nil
			}

			results, err := r.RefreshAll(ctx)
			if err != nil {
				return err
			}

			failed, records := 0, 0
			for _, res := range results {
				records += res.Records
				if res.Err != nil {
					failed++
				}
			}
			a.logger.Info().
				Int("data_sources", len(results)).
				Int("records", records).
				Int("failed", failed).
				Msg("refresh complete")

			if failed > 0 {
				return fmt.Errorf("%d of %d data sources failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Keep refreshing on the configured interval")
	cmd.Flags().StringVarP(&out, "out", "o", "-", "Append records as JSON lines to this file (- for stdout)")
	cmd.Flags().BoolVar(&logOnly, "log-only", false, "Log records instead of writing them")

	return cmd
}
