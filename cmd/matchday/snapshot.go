package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/defeedco/matchday/pkg/datasource"
	"github.com/defeedco/matchday/pkg/match"
	"github.com/defeedco/matchday/pkg/refresh"
)

func newSnapshotCmd(deps func() *app) *cobra.Command {
	var (
		since      string
		until      string
		labels     []string
		maxResults int
		limit      int
		pageURL    string
	)

	cmd := &cobra.Command{
		Use:   "snapshot <data-source-file>",
		Short: "Print the matches of the data sources declared in a file as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps()
			ctx := cmd.Context()

			sources, err := datasource.LoadFile(args[0])
			if err != nil {
				return err
			}

			now := time.Now()
			req := datasource.NewSnapshotRequest().Labels(labels...).MaxResults(maxResults)
			if since != "" {
				t, err := parseTimeFlag(since, now)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				req.StartDate(t)
			}
			if until != "" {
				t, err := parseTimeFlag(until, now)
				if err != nil {
					return fmt.Errorf("--until: %w", err)
				}
				req.EndDate(t)
			}

			var page *url.URL
			if pageURL != "" {
				if page, err = url.Parse(pageURL); err != nil {
					return fmt.Errorf("--url: %w", err)
				}
			}

			sink := refresh.NewJSONLinesSink[*match.Match](cmd.OutOrStdout())
			for _, ds := range sources {
				var snap *datasource.Snapshot[*match.Match]
				if page != nil {
					snap, err = a.blogger.GetURLSnapshot(ctx, page, ds)
				} else {
					snap, err = a.registry.Snapshot(ctx, req.Build(), ds)
				}
				if err != nil {
					return fmt.Errorf("snapshot %s: %w", ds, err)
				}

				count := 0
				for m, err := range snap.All() {
					if err != nil {
						return fmt.Errorf("read %s: %w", ds, err)
					}
					if err := sink.Put(ctx, ds, m); err != nil {
						return err
					}
					count++
					if limit > 0 && count >= limit {
						break
					}
				}

				a.logger.Info().
					Str("data_source_id", ds.ID.String()).
					Int("matches", count).
					Msg("snapshot complete")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "Only read posts newer than this date (2006-01-02) or age (e.g. 72h)")
	cmd.Flags().StringVar(&until, "until", "", "Only read posts older than this date or age")
	cmd.Flags().StringSliceVar(&labels, "label", nil, "Restrict to posts with this label (repeatable)")
	cmd.Flags().IntVar(&maxResults, "max-results", 0, "Posts per page (0 = plugin default)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many matches per data source (0 = no limit)")
	cmd.Flags().StringVar(&pageURL, "url", "", "Read only this page of the feed")

	return cmd
}

// parseTimeFlag accepts a date, an RFC 3339 timestamp or an age relative to
// now.
func parseTimeFlag(value string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(value); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}
