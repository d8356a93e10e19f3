package refresh

import "time"

type Config struct {
	MaxConcurrency int           `env:"REFRESH_MAX_CONCURRENCY,default=4" validate:"min=1"`
	Interval       time.Duration `env:"REFRESH_INTERVAL,default=2h"`
	// Lookback limits each refresh to posts published within this window.
	// Zero reads as far as the plugin's page limit allows.
	Lookback time.Duration `env:"REFRESH_LOOKBACK,default=0s"`
}
