package blogger

import (
	"github.com/rs/zerolog"

	"github.com/defeedco/matchday/pkg/datasource"
	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/fold"
	"github.com/defeedco/matchday/pkg/match"
)

// NewMatchPlugin builds the plugin producing football matches.
func NewMatchPlugin(cfg Config, fetcher feed.Fetcher, formats *feed.Formats, logger *zerolog.Logger) (*Plugin[*match.Match], error) {
	return New[*match.Match](cfg, fetcher, formats, newMatchParser, newMatchFolder, logger)
}

func newMatchParser(defs []extract.Definition) (datasource.EntityParser[*match.Match], error) {
	p, err := match.NewParser(defs)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func newMatchFolder() fold.Folder[*match.Match, *match.Match] {
	return match.Folder{}
}
