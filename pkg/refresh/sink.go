package refresh

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/defeedco/matchday/pkg/datasource"
)

// Sink receives the records of a refresh. Put may be called from several
// workers at once.
type Sink[T any] interface {
	Put(ctx context.Context, ds *datasource.DataSource, record T) error
}

type jsonLine[T any] struct {
	DataSourceID uuid.UUID `json:"dataSourceId"`
	Record       T         `json:"record"`
}

// JSONLinesSink writes one JSON object per record.
type JSONLinesSink[T any] struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLinesSink[T any](w io.Writer) *JSONLinesSink[T] {
	return &JSONLinesSink[T]{enc: json.NewEncoder(w)}
}

func (s *JSONLinesSink[T]) Put(_ context.Context, ds *datasource.DataSource, record T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.enc.Encode(jsonLine[T]{DataSourceID: ds.ID, Record: record}); err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return nil
}

// LogSink logs each record at debug level.
type LogSink[T fmt.Stringer] struct {
	logger *zerolog.Logger
}

func NewLogSink[T fmt.Stringer](logger *zerolog.Logger) *LogSink[T] {
	return &LogSink[T]{logger: logger}
}

func (s *LogSink[T]) Put(_ context.Context, ds *datasource.DataSource, record T) error {
	s.logger.Debug().
		Str("data_source_id", ds.ID.String()).
		Stringer("record", record).
		Msg("record refreshed")
	return nil
}
