package validator

import (
	"fmt"
	"strings"

	"github.com/rpattn/koreng/internal/domain"
)

// ValidateFields checks the field table of one entity: relationship targets
// must be known entities, only relationships may declare a relation, custom
// formats are reserved for temporal fields, and no two visible fields may
// share an output key.
func ValidateFields(entity string, fields []domain.FieldDescriptor, known func(name string) bool) error {
	keys := make(map[string]string, len(fields))

	for _, field := range fields {
		if field.IsRelationship() {
			if field.Relation == nil {
				return fmt.Errorf("entity %s: relationship %s has no relation", entity, field.Name)
			}
			if known != nil && !known(field.Relation.Target) {
				return fmt.Errorf("entity %s: relationship %s targets unknown entity %s", entity, field.Name, field.Relation.Target)
			}
			continue
		}

		if field.Relation != nil {
			return fmt.Errorf("entity %s: field %s cannot declare a relation because kind %s is not a relationship", entity, field.Name, field.Kind)
		}

		if strings.TrimSpace(field.Format) != "" && !field.Kind.IsTemporal() {
			return fmt.Errorf("entity %s: field %s cannot declare a format because kind %s is not temporal", entity, field.Name, field.Kind)
		}

		if !field.Visible() {
			continue
		}
		key := field.OutputKey()
		if other, taken := keys[key]; taken {
			return fmt.Errorf("entity %s: fields %s and %s both serialize as %q", entity, other, field.Name, key)
		}
		keys[key] = field.Name
	}

	return nil
}
