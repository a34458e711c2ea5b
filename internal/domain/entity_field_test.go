package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldKindSchemaType(t *testing.T) {
	assert.Equal(t, "boolean", FieldKindBool.SchemaType())
	assert.Equal(t, "number", FieldKindInt.SchemaType())
	assert.Equal(t, "number", FieldKindFloat.SchemaType())
	assert.Equal(t, "date", FieldKindDate.SchemaType())
	assert.Equal(t, "dateTime", FieldKindDateTime.SchemaType())
	assert.Equal(t, "string", FieldKindString.SchemaType())
	assert.Equal(t, "string", FieldKind(99).SchemaType())
	assert.Empty(t, FieldKindRelationship.SchemaType())
}

func TestNewEntityDescriptorDefaults(t *testing.T) {
	desc, err := NewEntityDescriptor("Widget", "widgets", "", []FieldDescriptor{
		{Name: "id", Kind: FieldKindInt},
		{Name: "displayName", Column: "display_name", Kind: FieldKindString, SerializedName: "label"},
		{Name: "secret", Kind: FieldKindString, Ignored: true},
		{Name: "owner", Kind: FieldKindRelationship, Relation: &Relation{Target: "User", LocalColumn: "owner_id", RemoteColumn: "id"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "id", desc.Key)

	id, ok := desc.Field("id")
	require.True(t, ok)
	assert.Equal(t, "id", id.Column)

	name, ok := desc.Field("displayName")
	require.True(t, ok)
	assert.Equal(t, "display_name", name.Column)
	assert.Equal(t, "label", name.OutputKey())

	_, ok = desc.Field("missing")
	assert.False(t, ok)

	var visible []string
	for _, f := range desc.VisibleFields() {
		visible = append(visible, f.Name)
	}
	assert.Equal(t, []string{"id", "displayName"}, visible)

	var scalar []string
	for _, f := range desc.ScalarFields() {
		scalar = append(scalar, f.Name)
	}
	assert.Equal(t, []string{"id", "displayName", "secret"}, scalar)
}

func TestNewEntityDescriptorValidation(t *testing.T) {
	_, err := NewEntityDescriptor("", "t", "", nil)
	assert.Error(t, err)

	_, err = NewEntityDescriptor("A", "", "", nil)
	assert.Error(t, err)

	_, err = NewEntityDescriptor("A", "a", "", []FieldDescriptor{{Name: "x"}, {Name: "x"}})
	assert.ErrorContains(t, err, "duplicate field x")

	_, err = NewEntityDescriptor("A", "a", "", []FieldDescriptor{{Name: "b", Kind: FieldKindRelationship}})
	assert.ErrorContains(t, err, "has no target")

	_, err = NewEntityDescriptor("A", "a", "", []FieldDescriptor{
		{Name: "b", Kind: FieldKindRelationship, Relation: &Relation{Target: "B", LocalColumn: "b_id"}},
	})
	assert.ErrorContains(t, err, "needs both join columns")
}
