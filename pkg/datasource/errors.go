package datasource

import (
	"errors"
	"fmt"
)

var (
	ErrPluginDisabled     = errors.New("plugin disabled")
	ErrPluginNotFound     = errors.New("plugin not found")
	ErrDataSourceDisabled = errors.New("data source disabled")
)

// ConfigurationError reports a data source that a plugin cannot serve. It is
// never worth retrying.
type ConfigurationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("invalid data source %s: %s", e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
