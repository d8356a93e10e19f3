package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS data_sources (
	id         UUID PRIMARY KEY,
	plugin_id  UUID NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	base_url   TEXT NOT NULL,
	enabled    BOOLEAN NOT NULL DEFAULT TRUE,
	raw_json   JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS data_sources_plugin_id_idx ON data_sources (plugin_id);
`

type DB struct {
	cfg  *Config
	pool *pgxpool.Pool
}

func NewDB(cfg *Config) *DB {
	return &DB{cfg: cfg}
}

func (d *DB) Pool() *pgxpool.Pool {
	if d.pool == nil {
		panic("db not connected, call DB.Connect() first")
	}
	return d.pool
}

// Connect connects to Postgres and optionally creates the schema.
func (d *DB) Connect(ctx context.Context) error {
	pool, err := pgxpool.New(ctx, d.cfg.DSN())
	if err != nil {
		return fmt.Errorf("pgx connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	// Optional schema creation for local/dev environments.
	if d.cfg.AutoMigrate {
		if _, err := pool.Exec(ctx, schema); err != nil {
			pool.Close()
			return fmt.Errorf("create schema resources: %w", err)
		}
	}

	d.pool = pool

	return nil
}

func (d *DB) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}
