package domain

import "fmt"

// FieldKind classifies an entity field for filtering, schema output and projection.
type FieldKind int

const (
	FieldKindString FieldKind = iota
	FieldKindBool
	FieldKindInt
	FieldKindFloat
	FieldKindDate
	FieldKindDateTime
	FieldKindRelationship
)

// Schema types exposed by the model endpoint.
const (
	SchemaTypeBoolean  = "boolean"
	SchemaTypeNumber   = "number"
	SchemaTypeDate     = "date"
	SchemaTypeDateTime = "dateTime"
	SchemaTypeString   = "string"
)

// SchemaType maps the kind onto the four-way vocabulary clients understand.
// Relationships have no schema type and return an empty string.
func (k FieldKind) SchemaType() string {
	switch k {
	case FieldKindBool:
		return SchemaTypeBoolean
	case FieldKindInt, FieldKindFloat:
		return SchemaTypeNumber
	case FieldKindDate:
		return SchemaTypeDate
	case FieldKindDateTime:
		return SchemaTypeDateTime
	case FieldKindRelationship:
		return ""
	default:
		return SchemaTypeString
	}
}

// IsNumeric reports whether the kind holds integer or floating point values.
func (k FieldKind) IsNumeric() bool {
	return k == FieldKindInt || k == FieldKindFloat
}

// IsTemporal reports whether the kind holds dates or timestamps.
func (k FieldKind) IsTemporal() bool {
	return k == FieldKindDate || k == FieldKindDateTime
}

func (k FieldKind) String() string {
	switch k {
	case FieldKindString:
		return "string"
	case FieldKindBool:
		return "bool"
	case FieldKindInt:
		return "int"
	case FieldKindFloat:
		return "float"
	case FieldKindDate:
		return "date"
	case FieldKindDateTime:
		return "datetime"
	case FieldKindRelationship:
		return "relationship"
	default:
		return fmt.Sprintf("FieldKind(%d)", int(k))
	}
}

// Relation describes how a relationship field joins to its target entity:
// target.RemoteColumn = owner.LocalColumn. A to-one reference keeps the foreign
// key on the owner (LocalColumn "customer_id", RemoteColumn "id"); a to-many
// collection keeps it on the target (LocalColumn "id", RemoteColumn "customer_id").
type Relation struct {
	Target       string
	LocalColumn  string
	RemoteColumn string
}

// FieldDescriptor is one entry of an entity's static field table.
type FieldDescriptor struct {
	Name   string
	Column string
	Kind   FieldKind

	// Ignored fields stay filterable but never appear in schema output or rows.
	Ignored bool

	// SerializedName replaces Name as the output key when set.
	SerializedName string

	// Format is a Go reference layout applied to Date and DateTime values.
	Format string

	Relation *Relation
}

// OutputKey returns the key used for this field in schema and row output.
func (f FieldDescriptor) OutputKey() string {
	if f.SerializedName != "" {
		return f.SerializedName
	}
	return f.Name
}

// IsRelationship reports whether the field references another entity.
func (f FieldDescriptor) IsRelationship() bool {
	return f.Kind == FieldKindRelationship
}

// Visible reports whether the field is part of schema output and projected rows.
func (f FieldDescriptor) Visible() bool {
	return !f.Ignored && !f.IsRelationship()
}

// EntityDescriptor is the runtime handle to a persistent record type.
type EntityDescriptor struct {
	Name   string
	Table  string
	Key    string
	Fields []FieldDescriptor

	index map[string]int
}

// NewEntityDescriptor builds a descriptor and its field index. Column names
// default to the field name and the key column defaults to "id".
func NewEntityDescriptor(name, table, key string, fields []FieldDescriptor) (*EntityDescriptor, error) {
	if name == "" {
		return nil, fmt.Errorf("entity name is required")
	}
	if table == "" {
		return nil, fmt.Errorf("entity %s: table is required", name)
	}
	if key == "" {
		key = "id"
	}

	desc := &EntityDescriptor{
		Name:   name,
		Table:  table,
		Key:    key,
		Fields: make([]FieldDescriptor, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for i, field := range fields {
		if field.Name == "" {
			return nil, fmt.Errorf("entity %s: field %d has no name", name, i)
		}
		if _, exists := desc.index[field.Name]; exists {
			return nil, fmt.Errorf("entity %s: duplicate field %s", name, field.Name)
		}
		if field.IsRelationship() {
			if field.Relation == nil || field.Relation.Target == "" {
				return nil, fmt.Errorf("entity %s: relationship %s has no target", name, field.Name)
			}
			if field.Relation.LocalColumn == "" || field.Relation.RemoteColumn == "" {
				return nil, fmt.Errorf("entity %s: relationship %s needs both join columns", name, field.Name)
			}
		} else if field.Column == "" {
			field.Column = field.Name
		}
		desc.Fields[i] = field
		desc.index[field.Name] = i
	}

	return desc, nil
}

// Field looks up a field by its declared name.
func (e *EntityDescriptor) Field(name string) (FieldDescriptor, bool) {
	idx, ok := e.index[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return e.Fields[idx], true
}

// VisibleFields returns the fields that appear in schema output and rows, in
// declaration order.
func (e *EntityDescriptor) VisibleFields() []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, len(e.Fields))
	for _, field := range e.Fields {
		if field.Visible() {
			fields = append(fields, field)
		}
	}
	return fields
}

// ScalarFields returns every non-relationship field, ignored ones included.
func (e *EntityDescriptor) ScalarFields() []FieldDescriptor {
	fields := make([]FieldDescriptor, 0, len(e.Fields))
	for _, field := range e.Fields {
		if !field.IsRelationship() {
			fields = append(fields, field)
		}
	}
	return fields
}
