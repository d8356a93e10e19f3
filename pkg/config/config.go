package config

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"

	"github.com/defeedco/matchday/pkg/datasource/blogger"
	"github.com/defeedco/matchday/pkg/lib"
	"github.com/defeedco/matchday/pkg/lib/log"
	"github.com/defeedco/matchday/pkg/refresh"
	"github.com/defeedco/matchday/pkg/storage/postgres"
)

type StorageDriver string

const (
	StorageFile     StorageDriver = "file"
	StoragePostgres StorageDriver = "postgres"
)

type StorageConfig struct {
	Driver StorageDriver `env:"STORAGE_DRIVER,default=file" validate:"required,oneof=file postgres"`
	// Dir holds the data source definitions of the file driver.
	Dir string `env:"DATA_SOURCES_DIR,default=./datasources"`
}

type FetchConfig struct {
	Timeout time.Duration `env:"FETCH_TIMEOUT,default=30s"`
	// FileRoot confines file:// data sources.
	FileRoot string `env:"FETCH_FILE_ROOT,default=."`
}

type Config struct {
	Log     log.Config     `env:""`
	Blogger blogger.Config `env:""`
	Refresh refresh.Config `env:""`
	Fetch   FetchConfig    `env:""`
	Storage StorageConfig  `env:""`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := lib.ValidateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadDB reads the database settings, which are only required by the
// postgres storage driver.
func LoadDB() (*postgres.Config, error) {
	var cfg postgres.Config

	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode db config: %w", err)
	}

	if err := lib.ValidateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("validate db config: %w", err)
	}

	return &cfg, nil
}
