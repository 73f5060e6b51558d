// Package schema describes the fixed entity model questions are asked against.
package schema

import (
	"fmt"
	"strings"
)

// Kind classifies a field for predicate compilation.
type Kind string

// Field kinds.
const (
	KindID      Kind = "id"
	KindText    Kind = "text"
	KindNumeric Kind = "numeric"
	KindDate    Kind = "date"
)

// Grouping names the canonicalization rule table used by generic grouping.
type Grouping string

// Grouping rule tables. GroupingNone fields group by raw value only.
const (
	GroupingNone     Grouping = ""
	GroupingPlatform Grouping = "platform"
	GroupingBrand    Grouping = "brand"
)

// Field is a single column of an entity.
type Field struct {
	Name     string
	Kind     Kind
	Grouping Grouping
}

// IsText reports whether the field takes the free-text matching policy.
func (f Field) IsText() bool { return f.Kind == KindText }

// IsNumeric reports whether sum/avg are meaningful for the field.
func (f Field) IsNumeric() bool { return f.Kind == KindNumeric || f.Kind == KindID }

// Entity is a named table with an ordered field list.
type Entity struct {
	name   string
	table  string
	fields []Field
	index  map[string]Field
}

// NewEntity creates an entity. Field names must be unique.
func NewEntity(name, table string, fields ...Field) (Entity, error) {
	if name == "" || table == "" {
		return Entity{}, fmt.Errorf("entity name and table are required")
	}
	index := make(map[string]Field, len(fields))
	for _, f := range fields {
		if _, dup := index[f.Name]; dup {
			return Entity{}, fmt.Errorf("duplicate field %q in entity %s", f.Name, name)
		}
		index[f.Name] = f
	}
	return Entity{name: name, table: table, fields: fields, index: index}, nil
}

// Name returns the entity name used by query intents.
func (e Entity) Name() string { return e.name }

// Table returns the backing table name.
func (e Entity) Table() string { return e.table }

// Fields returns the fields in declaration order.
func (e Entity) Fields() []Field { return e.fields }

// Field looks up a field by name.
func (e Entity) Field(name string) (Field, bool) {
	f, ok := e.index[name]
	return f, ok
}

// FieldNames returns all field names in declaration order.
func (e Entity) FieldNames() []string {
	names := make([]string, len(e.fields))
	for i, f := range e.fields {
		names[i] = f.Name
	}
	return names
}

// Describe renders the entity as the one-line schema description given to the translator,
// e.g. "Users (id: Int, first_name: String, ...)".
func (e Entity) Describe() string {
	parts := make([]string, len(e.fields))
	for i, f := range e.fields {
		parts[i] = f.Name + ": " + kindLabel(f.Kind)
	}
	return e.name + " (" + strings.Join(parts, ", ") + ")"
}

func kindLabel(k Kind) string {
	switch k {
	case KindID:
		return "Int"
	case KindNumeric:
		return "Float"
	case KindDate:
		return "DateTime"
	default:
		return "String"
	}
}

// Users is the only queryable entity.
var Users = mustEntity(NewEntity("Users", "users",
	Field{Name: "id", Kind: KindID},
	Field{Name: "first_name", Kind: KindText},
	Field{Name: "last_name", Kind: KindText},
	Field{Name: "email", Kind: KindText},
	Field{Name: "gender", Kind: KindText},
	Field{Name: "job_title", Kind: KindText},
	Field{Name: "device", Kind: KindText, Grouping: GroupingPlatform},
	Field{Name: "car", Kind: KindText, Grouping: GroupingBrand},
	Field{Name: "language", Kind: KindText},
	Field{Name: "country", Kind: KindText},
	Field{Name: "created_at", Kind: KindDate},
))

// Lookup returns the entity registered under name.
func Lookup(name string) (Entity, bool) {
	if name == Users.name {
		return Users, true
	}
	return Entity{}, false
}

func mustEntity(e Entity, err error) Entity {
	if err != nil {
		panic(err)
	}
	return e
}
