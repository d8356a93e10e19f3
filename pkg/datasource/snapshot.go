package datasource

import (
	"errors"
	"iter"
	"sync/atomic"
)

var ErrSnapshotConsumed = errors.New("snapshot already consumed")

// Snapshot is the lazy result of one crawl. It can be iterated once; records
// are only produced, and pages only fetched, as the caller consumes them.
type Snapshot[T any] struct {
	seq      iter.Seq2[T, error]
	consumed atomic.Bool
}

func NewSnapshot[T any](seq iter.Seq2[T, error]) *Snapshot[T] {
	return &Snapshot[T]{seq: seq}
}

// All yields every record. An error ends the sequence.
func (s *Snapshot[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		if s.consumed.Swap(true) {
			var zero T
			yield(zero, ErrSnapshotConsumed)
			return
		}
		s.seq(yield)
	}
}

// Collect drains the snapshot. The records read before a failure are
// returned along with it.
func (s *Snapshot[T]) Collect() ([]T, error) {
	var out []T
	for record, err := range s.All() {
		if err != nil {
			return out, err
		}
		out = append(out, record)
	}
	return out, nil
}
