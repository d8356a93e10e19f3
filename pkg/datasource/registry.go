package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
)

// Registry routes data sources to the plugin they name.
type Registry[T any] struct {
	mu      sync.RWMutex
	plugins map[uuid.UUID]Plugin[T]
	order   []uuid.UUID
	logger  *zerolog.Logger
}

func NewRegistry[T any](logger *zerolog.Logger) *Registry[T] {
	return &Registry[T]{
		plugins: make(map[uuid.UUID]Plugin[T]),
		logger:  logger,
	}
}

func (r *Registry[T]) Register(p Plugin[T]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[p.ID()]; exists {
		return fmt.Errorf("plugin '%s' already registered", p.ID())
	}
	r.plugins[p.ID()] = p
	r.order = append(r.order, p.ID())

	r.logger.Debug().
		Str("plugin_id", p.ID().String()).
		Str("title", p.Title()).
		Bool("enabled", p.Enabled()).
		Msg("registered plugin")

	return nil
}

func (r *Registry[T]) Get(id uuid.UUID) (Plugin[T], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, id)
	}
	return p, nil
}

// Plugins lists every plugin in registration order.
func (r *Registry[T]) Plugins() []Plugin[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Plugin[T], 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.plugins[id])
	}
	return out
}

func (r *Registry[T]) Enabled() []Plugin[T] {
	var out []Plugin[T]
	for _, p := range r.Plugins() {
		if p.Enabled() {
			out = append(out, p)
		}
	}
	return out
}

func (r *Registry[T]) Enable(id uuid.UUID) error {
	return r.setEnabled(id, true)
}

func (r *Registry[T]) Disable(id uuid.UUID) error {
	return r.setEnabled(id, false)
}

func (r *Registry[T]) setEnabled(id uuid.UUID, enabled bool) error {
	p, err := r.Get(id)
	if err != nil {
		return err
	}
	p.SetEnabled(enabled)
	r.logger.Info().
		Str("plugin_id", id.String()).
		Bool("enabled", enabled).
		Msg("plugin toggled")
	return nil
}

// Search ranks plugins whose title or description fuzzily contains query,
// closest first.
func (r *Registry[T]) Search(query string) []Plugin[T] {
	plugins := r.Plugins()
	if query == "" {
		return plugins
	}

	best := make(map[int]int)
	targets := make([]string, 0, 2*len(plugins))
	owner := make([]int, 0, 2*len(plugins))
	for i, p := range plugins {
		targets = append(targets, p.Title(), p.Description())
		owner = append(owner, i, i)
	}

	for _, rank := range fuzzy.RankFindNormalizedFold(query, targets) {
		i := owner[rank.OriginalIndex]
		if d, seen := best[i]; !seen || rank.Distance < d {
			best[i] = rank.Distance
		}
	}

	matched := make([]int, 0, len(best))
	for i := range best {
		matched = append(matched, i)
	}
	sort.Slice(matched, func(a, b int) bool {
		if best[matched[a]] != best[matched[b]] {
			return best[matched[a]] < best[matched[b]]
		}
		return matched[a] < matched[b]
	})

	out := make([]Plugin[T], 0, len(matched))
	for _, i := range matched {
		out = append(out, plugins[i])
	}
	return out
}

// Validate checks ds against the plugin it names.
func (r *Registry[T]) Validate(ds *DataSource) error {
	p, err := r.Get(ds.PluginID)
	if err != nil {
		return &ConfigurationError{Field: "pluginId", Reason: "no such plugin", Err: err}
	}
	return p.ValidateDataSource(ds)
}

// Snapshot routes ds to its plugin. Disabled plugins and disabled data
// sources are refused rather than answered with an empty snapshot.
func (r *Registry[T]) Snapshot(ctx context.Context, req SnapshotRequest, ds *DataSource) (*Snapshot[T], error) {
	p, err := r.Get(ds.PluginID)
	if err != nil {
		return nil, &ConfigurationError{Field: "pluginId", Reason: "no such plugin", Err: err}
	}
	if !p.Enabled() {
		return nil, fmt.Errorf("%s: %w", p.Title(), ErrPluginDisabled)
	}
	if !ds.Enabled {
		return nil, fmt.Errorf("data source %s: %w", ds, ErrDataSourceDisabled)
	}
	return p.GetSnapshot(ctx, req, ds)
}
