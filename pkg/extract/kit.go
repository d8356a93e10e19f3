package extract

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// Kit is a compiled pattern plus its ordered capture-group bindings for one
// record type. A Kit is immutable and safe for concurrent use.
type Kit[T any] struct {
	def     Definition
	re      *regexp.Regexp
	assigns []assignment[T]
	checks  []boundary
}

type assignment[T any] struct {
	group int
	field string
	set   setter[T]
}

// NewKit builds a kit programmatically. It is equivalent to compiling the
// matching Definition.
func NewKit[T any](schema *Schema[T], pattern string, flags Flags, bindings ...Binding) (*Kit[T], error) {
	return Compile(Definition{
		Type:    schema.TypeID(),
		Pattern: pattern,
		Flags:   flags,
		Fields:  bindings,
	}, schema)
}

func MustKit[T any](schema *Schema[T], pattern string, flags Flags, bindings ...Binding) *Kit[T] {
	kit, err := NewKit(schema, pattern, flags, bindings...)
	if err != nil {
		panic(err)
	}
	return kit
}

// Compile validates a definition against the schema and compiles it.
func Compile[T any](def Definition, schema *Schema[T]) (*Kit[T], error) {
	if def.Type != schema.TypeID() {
		return nil, fmt.Errorf("%w: type %q does not match schema %q", ErrInvalidKit, def.Type, schema.TypeID())
	}
	if def.Pattern == "" {
		return nil, fmt.Errorf("%w: empty pattern", ErrInvalidKit)
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("%w: no field bindings", ErrInvalidKit)
	}

	pattern := def.Pattern
	if def.Flags.Has(UnicodeClass) {
		var err error
		if pattern, err = unicodeClasses(pattern); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKit, err)
		}
	}
	re, err := regexp.Compile(def.Flags.inline() + pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: compile pattern: %w", ErrInvalidKit, err)
	}
	groups, checks := groupIndex(re)

	assigns := make([]assignment[T], 0, len(def.Fields))
	for _, b := range def.Fields {
		if b.Group < 1 || b.Group >= len(groups) {
			return nil, fmt.Errorf("%w: group %d out of range, pattern has %d groups", ErrInvalidKit, b.Group, len(groups)-1)
		}
		f, ok := schema.fields[b.Field]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no field %q", ErrInvalidKit, schema.TypeID(), b.Field)
		}

		var set setter[T]
		switch {
		case f.bind != nil && b.Kit == nil:
			return nil, fmt.Errorf("%w: field %q requires a nested kit", ErrInvalidKit, b.Field)
		case f.bind == nil && b.Kit != nil:
			return nil, fmt.Errorf("%w: field %q does not take a nested kit", ErrInvalidKit, b.Field)
		case f.bind != nil:
			set, err = f.bind(*b.Kit)
			if err != nil {
				return nil, fmt.Errorf("%w: field %q: %w", ErrInvalidKit, b.Field, err)
			}
		default:
			set = f.set
		}

		assigns = append(assigns, assignment[T]{group: groups[b.Group], field: b.Field, set: set})
	}

	return &Kit[T]{def: def.clone(), re: re, assigns: assigns, checks: checks}, nil
}

func (k *Kit[T]) TypeID() string {
	return k.def.Type
}

// Pattern returns the pattern as declared, without the inline flag prefix.
func (k *Kit[T]) Pattern() string {
	return k.def.Pattern
}

func (k *Kit[T]) Flags() Flags {
	return k.def.Flags
}

// Definition returns a copy of the persisted form of the kit.
func (k *Kit[T]) Definition() Definition {
	return k.def.clone()
}

func (k *Kit[T]) String() string {
	return fmt.Sprintf("%s[%s](%s)", k.def.Type, k.def.Flags, k.def.Pattern)
}

// Matches reports whether the pattern occurs anywhere in text.
func (k *Kit[T]) Matches(text string) bool {
	if len(k.checks) == 0 {
		return k.re.MatchString(text)
	}
	return k.locate(text) != nil
}

// Extract applies the kit to the first match in text. A missing match is
// reported as ok == false with a nil error.
func (k *Kit[T]) Extract(text string) (out T, ok bool, err error) {
	loc := k.locate(text)
	if loc == nil {
		return out, false, nil
	}
	out, err = k.populate(text, loc)
	if err != nil {
		var zero T
		return zero, false, err
	}
	return out, true, nil
}

// ExtractAll yields one record per non-overlapping match, in text order.
// A match whose fields cannot be assigned yields its error and scanning goes on.
func (k *Kit[T]) ExtractAll(text string) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for _, loc := range k.re.FindAllStringSubmatchIndex(text, -1) {
			if !k.boundariesHold(text, loc) {
				continue
			}
			out, err := k.populate(text, loc)
			if !yield(out, err) {
				return
			}
		}
	}
}

// locate returns the first match whose word boundaries hold.
func (k *Kit[T]) locate(text string) []int {
	if len(k.checks) == 0 {
		return k.re.FindStringSubmatchIndex(text)
	}
	for _, loc := range k.re.FindAllStringSubmatchIndex(text, -1) {
		if k.boundariesHold(text, loc) {
			return loc
		}
	}
	return nil
}

// boundariesHold checks the \b and \B markers of a match. A rejected match
// is skipped; overlapping alternatives of it are not retried.
func (k *Kit[T]) boundariesHold(text string, loc []int) bool {
	for _, c := range k.checks {
		pos := loc[2*c.group]
		if pos < 0 {
			continue
		}
		if isWordBoundary(text, pos) != c.want {
			return false
		}
	}
	return true
}

func (k *Kit[T]) populate(text string, loc []int) (T, error) {
	var out T
	for _, a := range k.assigns {
		start, end := loc[2*a.group], loc[2*a.group+1]
		if start < 0 {
			// optional group did not participate
			continue
		}
		raw := strings.TrimSpace(text[start:end])
		if err := a.set(&out, raw); err != nil {
			var zero T
			return zero, &ExtractionError{Field: a.field, Kit: k.String(), Value: raw, Err: err}
		}
	}
	return out, nil
}
