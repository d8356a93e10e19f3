package datasource

import (
	"context"
	"iter"

	"github.com/google/uuid"

	"github.com/defeedco/matchday/pkg/extract"
	"github.com/defeedco/matchday/pkg/feed"
)

// Plugin produces snapshots of T from the data sources that name it.
type Plugin[T any] interface {
	ID() uuid.UUID
	Title() string
	Description() string
	// ValidateDataSource fails with a *ConfigurationError before any network
	// access when ds cannot be served by this plugin.
	ValidateDataSource(ds *DataSource) error
	// GetSnapshot fails with ErrPluginDisabled while the plugin is disabled.
	GetSnapshot(ctx context.Context, req SnapshotRequest, ds *DataSource) (*Snapshot[T], error)
	Enabled() bool
	SetEnabled(enabled bool)
}

// EntityParser extracts record fragments from one post. Errors are local to
// that post.
type EntityParser[T any] interface {
	Parse(ctx context.Context, post feed.RawPost) iter.Seq2[T, error]
}

// ParserFactory builds the parser for the pattern kits of one data source.
type ParserFactory[T any] func(defs []extract.Definition) (EntityParser[T], error)
