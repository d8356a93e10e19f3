package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Flags are the pattern options a kit was declared with. They are part of the
// kit identity and survive a round trip through the persisted form unchanged.
type Flags uint8

const (
	CaseInsensitive Flags = 1 << iota
	Multiline
	DotAll
	Ungreedy
	// UnicodeCase is kept for identity only, RE2 case folding is always
	// Unicode-aware.
	UnicodeCase
	// UnicodeClass makes \w, \d, \s, their negations and \b match Unicode
	// letters, digits and spaces instead of ASCII only.
	UnicodeClass
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{CaseInsensitive, "CASE_INSENSITIVE"},
	{Multiline, "MULTILINE"},
	{DotAll, "DOTALL"},
	{Ungreedy, "UNGREEDY"},
	{UnicodeCase, "UNICODE_CASE"},
	{UnicodeClass, "UNICODE_CHARACTER_CLASS"},
}

func (f Flags) Has(other Flags) bool {
	return f&other == other
}

// Names returns the flag names in declaration order.
func (f Flags) Names() []string {
	names := make([]string, 0, len(flagNames))
	for _, fn := range flagNames {
		if f.Has(fn.flag) {
			names = append(names, fn.name)
		}
	}
	return names
}

func (f Flags) String() string {
	if f == 0 {
		return "NONE"
	}
	return strings.Join(f.Names(), "|")
}

// ParseFlags is the inverse of Names. Matching is case-insensitive.
func ParseFlags(names []string) (Flags, error) {
	var out Flags
	for _, name := range names {
		found := false
		for _, fn := range flagNames {
			if strings.EqualFold(strings.TrimSpace(name), fn.name) {
				out |= fn.flag
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown pattern flag: %q", name)
		}
	}
	return out, nil
}

// inline renders the flags RE2 understands as an inline group prefix.
func (f Flags) inline() string {
	var b strings.Builder
	if f.Has(CaseInsensitive) {
		b.WriteByte('i')
	}
	if f.Has(Multiline) {
		b.WriteByte('m')
	}
	if f.Has(DotAll) {
		b.WriteByte('s')
	}
	if f.Has(Ungreedy) {
		b.WriteByte('U')
	}
	if b.Len() == 0 {
		return ""
	}
	return "(?" + b.String() + ")"
}

func (f Flags) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Names())
}

func (f *Flags) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("decode pattern flags: %w", err)
	}
	parsed, err := ParseFlags(names)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Flags) MarshalYAML() (any, error) {
	return f.Names(), nil
}

func (f *Flags) UnmarshalYAML(value *yaml.Node) error {
	var names []string
	if err := value.Decode(&names); err != nil {
		return fmt.Errorf("decode pattern flags: %w", err)
	}
	parsed, err := ParseFlags(names)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
