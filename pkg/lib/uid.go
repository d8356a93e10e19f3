package lib

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"
)

// TypedUID is a structured ID with a type prefix, e.g.
// "match:primeira-liga:porto:braga:2021-03-01".
type TypedUID struct {
	Type        string
	Identifiers []string
}

func (s TypedUID) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *TypedUID) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	uid, err := NewTypedUIDFromString(str)
	if err != nil {
		return fmt.Errorf("new typed uid from string: %w", err)
	}
	*s = uid
	return nil
}

func (s TypedUID) String() string {
	ids := make([]string, len(s.Identifiers))
	for i, id := range s.Identifiers {
		ids[i] = Slug(id)
	}
	return fmt.Sprintf("%s:%s", s.Type, strings.Join(ids, ":"))
}

func (s TypedUID) Equal(other TypedUID) bool {
	return s.String() == other.String()
}

func NewTypedUIDFromString(s string) (TypedUID, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || parts[0] == "" {
		return TypedUID{}, fmt.Errorf("invalid typed uid: %s", s)
	}
	return NewTypedUID(parts[0], parts[1:]...), nil
}

func NewTypedUID(typ string, identifiers ...string) TypedUID {
	return TypedUID{
		Type:        typ,
		Identifiers: identifiers,
	}
}

// Slug lowercases s and collapses every run of characters other than letters
// and digits into a single dash, so that "FC Porto" and "fc-porto" agree.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
