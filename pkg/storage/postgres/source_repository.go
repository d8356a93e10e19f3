package postgres

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/defeedco/matchday/pkg/datasource"
)

// DataSourceRepository persists data sources in their JSON form. The
// indexed columns are copies kept for querying.
type DataSourceRepository struct {
	db *DB
}

func NewDataSourceRepository(db *DB) *DataSourceRepository {
	return &DataSourceRepository{db: db}
}

// Add inserts ds or replaces the stored data source with the same id.
func (r *DataSourceRepository) Add(ctx context.Context, ds *datasource.DataSource) error {
	if err := ds.Validate(); err != nil {
		return fmt.Errorf("validate data source: %w", err)
	}
	ds.EnsureID()

	rawJSON, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("marshal data source: %w", err)
	}

	_, err = r.db.Pool().Exec(ctx, `
		INSERT INTO data_sources (id, plugin_id, title, base_url, enabled, raw_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			plugin_id = EXCLUDED.plugin_id,
			title = EXCLUDED.title,
			base_url = EXCLUDED.base_url,
			enabled = EXCLUDED.enabled,
			raw_json = EXCLUDED.raw_json,
			updated_at = now()`,
		ds.ID, ds.PluginID, ds.Title, ds.BaseURL, ds.Enabled, rawJSON,
	)
	if err != nil {
		return fmt.Errorf("upsert data source: %w", err)
	}
	return nil
}

func (r *DataSourceRepository) Remove(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Pool().Exec(ctx, `DELETE FROM data_sources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete data source: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("data source '%s' not found", id)
	}
	return nil
}

func (r *DataSourceRepository) List(ctx context.Context) ([]*datasource.DataSource, error) {
	rows, err := r.db.Pool().Query(ctx, `SELECT raw_json FROM data_sources ORDER BY title, id`)
	if err != nil {
		return nil, fmt.Errorf("query data sources: %w", err)
	}

	raws, err := pgx.CollectRows(rows, pgx.RowTo[[]byte])
	if err != nil {
		return nil, fmt.Errorf("scan data sources: %w", err)
	}

	result := make([]*datasource.DataSource, len(raws))
	for i, raw := range raws {
		out, err := dataSourceFromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("deserialize data source: %w", err)
		}
		result[i] = out
	}

	return result, nil
}

// GetByID returns nil without an error when no data source has id.
func (r *DataSourceRepository) GetByID(ctx context.Context, id uuid.UUID) (*datasource.DataSource, error) {
	var raw []byte
	err := r.db.Pool().QueryRow(ctx, `SELECT raw_json FROM data_sources WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query data source: %w", err)
	}

	return dataSourceFromJSON(raw)
}

func dataSourceFromJSON(raw []byte) (*datasource.DataSource, error) {
	sources, err := datasource.Decode(bytes.NewReader(raw), datasource.EncodingJSON)
	if err != nil {
		return nil, err
	}
	if len(sources) != 1 {
		return nil, fmt.Errorf("expected one data source, got %d", len(sources))
	}
	return sources[0], nil
}
