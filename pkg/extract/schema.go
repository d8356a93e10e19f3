package extract

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrNestedNoMatch = errors.New("nested kit did not match")

type setter[T any] func(dst *T, raw string) error

type field[T any] struct {
	name string
	set  setter[T]
	// bind compiles a nested kit definition into a setter. Only set for nested fields.
	bind func(def Definition) (setter[T], error)
}

// Schema is the binding table of one record type: every field a kit may
// populate is registered here once, together with the function that assigns
// a captured string to it.
type Schema[T any] struct {
	typeID string
	fields map[string]*field[T]
}

func NewSchema[T any](typeID string) *Schema[T] {
	return &Schema[T]{
		typeID: typeID,
		fields: make(map[string]*field[T]),
	}
}

func (s *Schema[T]) TypeID() string {
	return s.typeID
}

// Fields lists the registered field names, sorted.
func (s *Schema[T]) Fields() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Schema[T]) add(f *field[T]) *Schema[T] {
	if _, exists := s.fields[f.name]; exists {
		panic(fmt.Sprintf("extract: field %q registered twice on %s", f.name, s.typeID))
	}
	s.fields[f.name] = f
	return s
}

// Field registers a field with a custom coercion from the captured string.
func (s *Schema[T]) Field(name string, set func(dst *T, raw string) error) *Schema[T] {
	return s.add(&field[T]{name: name, set: set})
}

func (s *Schema[T]) String(name string, set func(dst *T, v string)) *Schema[T] {
	return s.Field(name, func(dst *T, raw string) error {
		set(dst, raw)
		return nil
	})
}

func (s *Schema[T]) Int(name string, set func(dst *T, v int64)) *Schema[T] {
	return s.Field(name, func(dst *T, raw string) error {
		v, err := strconv.ParseInt(strings.ReplaceAll(raw, ",", ""), 10, 64)
		if err != nil {
			return fmt.Errorf("parse int: %w", err)
		}
		set(dst, v)
		return nil
	})
}

// Time registers a timestamp field. Layouts are tried in order.
func (s *Schema[T]) Time(name string, set func(dst *T, v time.Time), layouts ...string) *Schema[T] {
	if len(layouts) == 0 {
		layouts = []string{time.RFC3339, time.DateOnly}
	}
	return s.Field(name, func(dst *T, raw string) error {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, raw); err == nil {
				set(dst, t)
				return nil
			}
		}
		return fmt.Errorf("parse time: %q matches none of %v", raw, layouts)
	})
}

// Nested registers a field populated from the output of a nested kit applied
// to the captured substring. The nested kit definition comes with the binding.
func Nested[T, N any](s *Schema[T], name string, nested *Schema[N], set func(dst *T, v N)) *Schema[T] {
	return s.add(&field[T]{
		name: name,
		bind: func(def Definition) (setter[T], error) {
			kit, err := Compile(def, nested)
			if err != nil {
				return nil, fmt.Errorf("compile nested kit: %w", err)
			}
			return func(dst *T, raw string) error {
				v, ok, err := kit.Extract(raw)
				if err != nil {
					return err
				}
				if !ok {
					return ErrNestedNoMatch
				}
				set(dst, v)
				return nil
			}, nil
		},
	})
}
