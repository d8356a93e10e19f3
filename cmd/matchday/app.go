package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/defeedco/matchday/pkg/config"
	"github.com/defeedco/matchday/pkg/datasource"
	"github.com/defeedco/matchday/pkg/datasource/blogger"
	"github.com/defeedco/matchday/pkg/feed"
	"github.com/defeedco/matchday/pkg/lib"
	"github.com/defeedco/matchday/pkg/lib/log"
	"github.com/defeedco/matchday/pkg/match"
	"github.com/defeedco/matchday/pkg/storage/file"
	"github.com/defeedco/matchday/pkg/storage/postgres"
)

type sourceStore interface {
	Add(ctx context.Context, ds *datasource.DataSource) error
	Remove(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*datasource.DataSource, error)
	GetByID(ctx context.Context, id uuid.UUID) (*datasource.DataSource, error)
}

// app holds the dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	logger   *zerolog.Logger
	blogger  *blogger.Plugin[*match.Match]
	registry *datasource.Registry[*match.Match]
	db       *postgres.DB
}

func newApp(envFile string) (*app, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := log.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	fetcher := lib.NewDefaultFetcher(logger, cfg.Fetch.Timeout, cfg.Fetch.FileRoot)
	plugin, err := blogger.NewMatchPlugin(cfg.Blogger, fetcher, feed.DefaultFormats, logger)
	if err != nil {
		return nil, fmt.Errorf("create blogger plugin: %w", err)
	}

	registry := datasource.NewRegistry[*match.Match](logger)
	if err := registry.Register(plugin); err != nil {
		return nil, fmt.Errorf("register plugin: %w", err)
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		blogger:  plugin,
		registry: registry,
	}, nil
}

// store opens the configured data source store.
func (a *app) store(ctx context.Context) (sourceStore, error) {
	switch a.cfg.Storage.Driver {
	case config.StoragePostgres:
		dbCfg, err := config.LoadDB()
		if err != nil {
			return nil, err
		}
		a.db = postgres.NewDB(dbCfg)
		if err := a.db.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		return postgres.NewDataSourceRepository(a.db), nil
	default:
		return file.NewStore(a.cfg.Storage.Dir, a.logger), nil
	}
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
