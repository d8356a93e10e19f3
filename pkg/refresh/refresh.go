// Package refresh periodically reads snapshots of every configured data
// source and hands their records to a sink.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/defeedco/matchday/pkg/datasource"
	"github.com/defeedco/matchday/pkg/lib"
)

type sourceStore interface {
	List(ctx context.Context) ([]*datasource.DataSource, error)
}

type snapshotter[T any] interface {
	Snapshot(ctx context.Context, req datasource.SnapshotRequest, ds *datasource.DataSource) (*datasource.Snapshot[T], error)
}

// Result is the outcome of refreshing one data source.
type Result struct {
	DataSourceID uuid.UUID
	Records      int
	Duration     time.Duration
	// Shared is set when the refresh joined one already running for the
	// same data source.
	Shared  bool
	Skipped bool
	Err     error
}

// Refresher runs snapshots on a bounded worker pool.
//
// Data sources are independent of each other. Overlapping refreshes of the
// same data source are coalesced: the later caller waits for the running
// one and shares its result.
type Refresher[T any] struct {
	store     sourceStore
	snapshots snapshotter[T]
	sink      Sink[T]
	pool      pond.Pool
	inflight  singleflight.Group
	cfg       Config
	logger    *zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New[T any](
	logger *zerolog.Logger,
	store sourceStore,
	snapshots snapshotter[T],
	sink Sink[T],
	cfg Config,
) *Refresher[T] {
	return &Refresher[T]{
		store:     store,
		snapshots: snapshots,
		sink:      sink,
		pool:      pond.NewPool(max(cfg.MaxConcurrency, 1)),
		cfg:       cfg,
		logger:    logger,
	}
}

// Refresh reads every data source once and waits for all of them. Disabled
// data sources are reported as skipped.
func (r *Refresher[T]) Refresh(ctx context.Context, sources []*datasource.DataSource) []Result {
	results := make([]Result, len(sources))
	group := r.pool.NewGroup()

	for i, ds := range sources {
		if !ds.Enabled {
			results[i] = Result{DataSourceID: ds.ID, Skipped: true}
			continue
		}
		group.Submit(func() {
			results[i] = r.refreshOne(ctx, ds)
		})
	}

	if err := group.Wait(); err != nil {
		r.logger.Error().Err(err).Msg("refresh group failed")
	}
	return results
}

// RefreshAll refreshes every data source of the store.
func (r *Refresher[T]) RefreshAll(ctx context.Context) ([]Result, error) {
	sources, err := r.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list data sources: %w", err)
	}
	return r.Refresh(ctx, sources), nil
}

func (r *Refresher[T]) refreshOne(ctx context.Context, ds *datasource.DataSource) Result {
	logger := r.logger.With().
		Str("data_source_id", ds.ID.String()).
		Str("base_url", ds.BaseURL).
		Logger()

	start := time.Now()
	v, err, shared := r.inflight.Do(ds.ID.String(), func() (any, error) {
		return r.run(ctx, ds)
	})
	records, _ := v.(int)
	res := Result{
		DataSourceID: ds.ID,
		Records:      records,
		Duration:     time.Since(start),
		Shared:       shared,
		Err:          err,
	}

	event := logger.Info()
	if err != nil {
		event = logger.Error().Err(err)
	}
	event.
		Int("records", res.Records).
		Dur("duration", res.Duration).
		Bool("shared", shared).
		Msg("data source refreshed")

	return res
}

func (r *Refresher[T]) run(ctx context.Context, ds *datasource.DataSource) (int, error) {
	req := datasource.NewSnapshotRequest()
	if r.cfg.Lookback > 0 {
		req.StartDate(time.Now().Add(-r.cfg.Lookback))
	}

	snap, err := r.snapshots.Snapshot(ctx, req.Build(), ds)
	if err != nil {
		return 0, fmt.Errorf("get snapshot: %w", err)
	}

	count := 0
	for record, err := range snap.All() {
		if err != nil {
			return count, fmt.Errorf("read snapshot: %w", err)
		}
		if err := r.sink.Put(ctx, ds, record); err != nil {
			return count, fmt.Errorf("put record: %w", err)
		}
		count++
	}
	return count, nil
}

// Start refreshes every data source of the store now and then on each tick
// until ctx is done or Shutdown is called.
func (r *Refresher[T]) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return errors.New("refresher already started")
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)

		ticker := lib.JitterTicker(r.cfg.Interval)
		defer ticker.Stop()

		for {
			if _, err := r.RefreshAll(ctx); err != nil {
				r.logger.Error().Err(err).Msg("refresh failed")
			}

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	r.logger.Info().
		Dur("interval", r.cfg.Interval).
		Int("max_concurrency", r.cfg.MaxConcurrency).
		Msg("refresher started")

	return nil
}

// Shutdown stops the polling loop and waits for running refreshes.
func (r *Refresher[T]) Shutdown() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	r.pool.StopAndWait()
}
