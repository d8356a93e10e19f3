// Package file reads data source definitions from a directory of JSON and
// YAML files.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/defeedco/matchday/pkg/datasource"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Store loads every definition file directly under Dir. Files are read again
// on each List, so edits are picked up by the next refresh.
type Store struct {
	dir    string
	logger *zerolog.Logger
}

func NewStore(dir string, logger *zerolog.Logger) *Store {
	return &Store{dir: dir, logger: logger}
}

// List decodes all definition files concurrently. A single invalid file
// fails the whole listing, naming the file.
func (s *Store) List(ctx context.Context) ([]*datasource.DataSource, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !slices.Contains(extensions, strings.ToLower(filepath.Ext(e.Name()))) {
			continue
		}
		paths = append(paths, filepath.Join(s.dir, e.Name()))
	}
	sort.Strings(paths)

	loaded := make([][]*datasource.DataSource, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sources, err := datasource.LoadFile(path)
			if err != nil {
				return err
			}
			loaded[i] = sources
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []*datasource.DataSource
	seen := make(map[uuid.UUID]string)
	for i, sources := range loaded {
		for _, ds := range sources {
			if prev, dup := seen[ds.ID]; dup {
				return nil, fmt.Errorf("data source %s declared in both '%s' and '%s'", ds.ID, prev, paths[i])
			}
			seen[ds.ID] = paths[i]
			out = append(out, ds)
		}
	}

	s.logger.Debug().
		Str("dir", s.dir).
		Int("files", len(paths)).
		Int("data_sources", len(out)).
		Msg("loaded data sources")

	return out, nil
}

// GetByID returns nil without an error when no data source has id.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*datasource.DataSource, error) {
	sources, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, ds := range sources {
		if ds.ID == id {
			return ds, nil
		}
	}
	return nil, nil
}

// Add writes ds to its own file named after its id.
func (s *Store) Add(_ context.Context, ds *datasource.DataSource) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("validate data source: %w", err)
	}
	ds.EnsureID()

	f, err := os.Create(s.path(ds.ID))
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := datasource.Encode(f, datasource.EncodingYAML, ds); err != nil {
		f.Close()
		return fmt.Errorf("encode data source: %w", err)
	}
	return f.Close()
}

// Remove deletes a file written by Add.
func (s *Store) Remove(_ context.Context, id uuid.UUID) error {
	if err := os.Remove(s.path(id)); err != nil {
		return fmt.Errorf("remove data source: %w", err)
	}
	return nil
}

func (s *Store) path(id uuid.UUID) string {
	return filepath.Join(s.dir, id.String()+".yaml")
}
