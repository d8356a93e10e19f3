package extract

import (
	"errors"
	"fmt"
	"iter"
)

// KitSet holds the kits of one record type in declared precedence order.
type KitSet[T any] struct {
	kits []*Kit[T]
}

func NewKitSet[T any](kits ...*Kit[T]) *KitSet[T] {
	return &KitSet[T]{kits: kits}
}

// CompileAll compiles every definition targeting the schema's type, keeping
// declaration order. Definitions for other types are ignored.
func CompileAll[T any](defs []Definition, schema *Schema[T]) (*KitSet[T], error) {
	set := &KitSet[T]{}
	for i, def := range defs {
		if def.Type != schema.TypeID() {
			continue
		}
		kit, err := Compile(def, schema)
		if err != nil {
			return nil, fmt.Errorf("pattern kit %d: %w", i, err)
		}
		set.kits = append(set.kits, kit)
	}
	return set, nil
}

func (s *KitSet[T]) Len() int {
	return len(s.kits)
}

func (s *KitSet[T]) Kits() []*Kit[T] {
	return append([]*Kit[T](nil), s.kits...)
}

// Extract tries each kit in order. The first kit that matches and populates
// cleanly wins; later kits are not attempted. Failures of earlier kits are
// returned joined only when no kit succeeds.
func (s *KitSet[T]) Extract(text string) (T, bool, error) {
	var errs []error
	for _, kit := range s.kits {
		out, ok, err := kit.Extract(text)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			return out, true, nil
		}
	}
	var zero T
	return zero, false, errors.Join(errs...)
}

// ExtractAll yields every match of the first kit that extracts at least one
// record from text. A kit whose matches all fail to populate does not count
// and the next kit is tried. The collected failures are yielded only when no
// kit succeeds.
func (s *KitSet[T]) ExtractAll(text string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		var failed []error

		for _, kit := range s.kits {
			var pending []error
			committed := false

			for out, err := range kit.ExtractAll(text) {
				if err != nil {
					if !committed {
						pending = append(pending, err)
						continue
					}
					if !yield(zero, err) {
						return
					}
					continue
				}
				if !committed {
					committed = true
					for _, perr := range pending {
						if !yield(zero, perr) {
							return
						}
					}
				}
				if !yield(out, nil) {
					return
				}
			}

			if committed {
				return
			}
			failed = append(failed, pending...)
		}

		for _, err := range failed {
			if !yield(zero, err) {
				return
			}
		}
	}
}
