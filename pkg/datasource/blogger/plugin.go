// Package blogger serves data sources backed by Blogger hosted blogs, read
// through any registered feed format.
package blogger

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"path"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/defeedco/matchday/pkg/datasource"
	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/fold"
	"github.com/defeedco/matchday/pkg/lib"
)

// Plugin turns Blogger feeds into snapshots of T. Posts are split into
// fragments by the data source's parser and grouped by a fresh folder per
// snapshot.
type Plugin[T any] struct {
	id        uuid.UUID
	cfg       Config
	hosts     []string
	fetcher   feed.Fetcher
	formats   *feed.Formats
	newParser datasource.ParserFactory[T]
	newFolder func() fold.Folder[T, T]
	parsers   *lib.Cache[string, datasource.EntityParser[T]]
	enabled   atomic.Bool
	logger    *zerolog.Logger
}

var _ datasource.Plugin[int] = (*Plugin[int])(nil)

func New[T any](
	cfg Config,
	fetcher feed.Fetcher,
	formats *feed.Formats,
	newParser datasource.ParserFactory[T],
	newFolder func() fold.Folder[T, T],
	logger *zerolog.Logger,
) (*Plugin[T], error) {
	if err := lib.ValidateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("blogger config: %w", err)
	}
	id, err := uuid.Parse(cfg.PluginID)
	if err != nil {
		return nil, fmt.Errorf("parse plugin id: %w", err)
	}
	if formats == nil {
		formats = feed.DefaultFormats
	}

	pluginLogger := logger.With().Str("plugin_id", id.String()).Logger()
	p := &Plugin[T]{
		id:        id,
		cfg:       cfg,
		hosts:     cfg.hostPatterns(),
		fetcher:   fetcher,
		formats:   formats,
		newParser: newParser,
		newFolder: newFolder,
		parsers:   lib.NewCache[string, datasource.EntityParser[T]](0, &pluginLogger),
		logger:    &pluginLogger,
	}
	p.enabled.Store(cfg.Enabled)
	return p, nil
}

func (p *Plugin[T]) ID() uuid.UUID {
	return p.id
}

func (p *Plugin[T]) Title() string {
	return p.cfg.Title
}

func (p *Plugin[T]) Description() string {
	return p.cfg.Description
}

func (p *Plugin[T]) Enabled() bool {
	return p.enabled.Load()
}

func (p *Plugin[T]) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// ValidateDataSource checks ds without touching the network.
func (p *Plugin[T]) ValidateDataSource(ds *datasource.DataSource) error {
	if ds == nil {
		return &datasource.ConfigurationError{Field: "dataSource", Reason: "missing"}
	}
	if ds.PluginID != p.id {
		return &datasource.ConfigurationError{
			Field:  "pluginId",
			Reason: fmt.Sprintf("%s is not handled by %s", ds.PluginID, p.cfg.Title),
		}
	}
	if err := ds.Validate(); err != nil {
		return &datasource.ConfigurationError{Field: "dataSource", Reason: "invalid", Err: err}
	}

	base, err := url.Parse(ds.BaseURL)
	if err != nil {
		return &datasource.ConfigurationError{Field: "baseUrl", Reason: "unparsable", Err: err}
	}
	if err := p.checkURL(base); err != nil {
		return err
	}
	if _, err := p.format(ds, base); err != nil {
		return &datasource.ConfigurationError{Field: "format", Reason: "unknown format", Err: err}
	}
	if _, err := p.parser(ds.PatternKits); err != nil {
		return &datasource.ConfigurationError{Field: "patternKits", Reason: "cannot compile", Err: err}
	}
	return nil
}

func (p *Plugin[T]) checkURL(u *url.URL) error {
	switch u.Scheme {
	case "http", "https":
		host := strings.ToLower(u.Hostname())
		for _, pattern := range p.hosts {
			if ok, _ := path.Match(pattern, host); ok {
				return nil
			}
		}
		return &datasource.ConfigurationError{Field: "baseUrl", Reason: fmt.Sprintf("host '%s' is not allowed", host)}
	case "file":
		if p.cfg.AllowLocal {
			return nil
		}
		return &datasource.ConfigurationError{Field: "baseUrl", Reason: "local files are not allowed"}
	default:
		return &datasource.ConfigurationError{Field: "baseUrl", Reason: fmt.Sprintf("unsupported scheme '%s'", u.Scheme)}
	}
}

func (p *Plugin[T]) format(ds *datasource.DataSource, base *url.URL) (feed.Format, error) {
	name := ds.Format
	if name == "" {
		name = feed.Detect(base)
	}
	return p.formats.Get(name)
}

// parser compiles the kits once per distinct kit list.
func (p *Plugin[T]) parser(defs []extract.Definition) (datasource.EntityParser[T], error) {
	raw, err := json.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("encode pattern kits: %w", err)
	}
	return p.parsers.GetOrCreate(lib.HashParams(string(raw)), func() (datasource.EntityParser[T], error) {
		return p.newParser(defs)
	})
}

// GetSnapshot opens the feed behind ds filtered by req. The first page is
// fetched before returning so that an unreadable feed fails here; later
// pages are fetched as the snapshot is consumed.
func (p *Plugin[T]) GetSnapshot(ctx context.Context, req datasource.SnapshotRequest, ds *datasource.DataSource) (*datasource.Snapshot[T], error) {
	if !p.Enabled() {
		return nil, fmt.Errorf("%s: %w", p.cfg.Title, datasource.ErrPluginDisabled)
	}
	if err := p.ValidateDataSource(ds); err != nil {
		return nil, err
	}

	base, _ := url.Parse(ds.BaseURL)
	format, err := p.format(ds, base)
	if err != nil {
		return nil, err
	}

	builder := feed.NewURLBuilder(ds.BaseURL, format)
	if p.cfg.MaxResults > 0 {
		builder.MaxResults(p.cfg.MaxResults)
	}
	start, err := req.ApplyTo(builder).BuildURL()
	if err != nil {
		return nil, err
	}

	return p.open(ctx, ds, format, start,
		feed.WithMaxPages(p.cfg.MaxPages),
		feed.WithStopBefore(req.StartDate),
	)
}

// GetURLSnapshot reads the single page at u, typically a post or a next link
// recorded from an earlier snapshot.
func (p *Plugin[T]) GetURLSnapshot(ctx context.Context, u *url.URL, ds *datasource.DataSource) (*datasource.Snapshot[T], error) {
	if !p.Enabled() {
		return nil, fmt.Errorf("%s: %w", p.cfg.Title, datasource.ErrPluginDisabled)
	}
	if err := p.ValidateDataSource(ds); err != nil {
		return nil, err
	}
	if err := p.checkURL(u); err != nil {
		return nil, err
	}

	format, err := p.format(ds, u)
	if err != nil {
		return nil, err
	}
	return p.open(ctx, ds, format, u, feed.WithMaxPages(1))
}

func (p *Plugin[T]) open(ctx context.Context, ds *datasource.DataSource, format feed.Format, start *url.URL, opts ...feed.Option) (*datasource.Snapshot[T], error) {
	parser, err := p.parser(ds.PatternKits)
	if err != nil {
		return nil, err
	}

	logger := p.logger.With().
		Str("data_source_id", ds.ID.String()).
		Str("format", format.Name()).
		Logger()

	opts = append(opts, feed.WithFollow(p.checkURL), feed.WithLogger(&logger))
	f, err := feed.Open(ctx, p.fetcher, format, start, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", ds, err)
	}

	logger.Debug().
		Str("url", start.String()).
		Str("blog", f.Blog().Title).
		Msg("feed opened")

	return datasource.NewSnapshot(fold.Fold(fragments(ctx, f, parser, &logger), p.newFolder())), nil
}

// fragments parses each post as it arrives. A post that fails to parse is
// logged and skipped; a feed failure ends the sequence.
func fragments[T any](ctx context.Context, f *feed.Feed, parser datasource.EntityParser[T], logger *zerolog.Logger) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for post, err := range f.Posts(ctx) {
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for fragment, err := range parser.Parse(ctx, post) {
				if err != nil {
					logger.Warn().
						Err(err).
						Str("post_id", post.ID).
						Str("post_url", post.Link).
						Msg("skipping unparsable post")
					continue
				}
				if !yield(fragment, nil) {
					return
				}
			}
		}
	}
}
