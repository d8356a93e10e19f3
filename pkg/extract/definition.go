package extract

// Definition is the persisted form of a pattern kit.
//
//	type: match
//	pattern: '(\w+) vs\.? (\w+)'
//	flags: [CASE_INSENSITIVE]
//	fields:
//	  - {group: 1, field: homeTeam}
//	  - {group: 2, field: awayTeam}
type Definition struct {
	Type    string    `json:"type" yaml:"type" validate:"required"`
	Pattern string    `json:"pattern" yaml:"pattern" validate:"required"`
	Flags   Flags     `json:"flags,omitempty" yaml:"flags,omitempty"`
	Fields  []Binding `json:"fields" yaml:"fields" validate:"required,min=1,dive"`
}

// Binding assigns one capture group to one field. When Kit is set the group
// substring is handed to that nested kit and its output is assigned instead.
type Binding struct {
	Group int         `json:"group" yaml:"group" validate:"min=1"`
	Field string      `json:"field" yaml:"field" validate:"required"`
	Kit   *Definition `json:"kit,omitempty" yaml:"kit,omitempty"`
}

// Bind is shorthand for a plain group-to-field binding.
func Bind(group int, field string) Binding {
	return Binding{Group: group, Field: field}
}

// BindNested binds a group to a field filled by a nested kit.
func BindNested(group int, field string, kit Definition) Binding {
	return Binding{Group: group, Field: field, Kit: &kit}
}

func (d Definition) clone() Definition {
	out := d
	out.Fields = make([]Binding, len(d.Fields))
	for i, b := range d.Fields {
		out.Fields[i] = b
		if b.Kit != nil {
			nested := b.Kit.clone()
			out.Fields[i].Kit = &nested
		}
	}
	return out
}
