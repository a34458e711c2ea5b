package schema

import (
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rpattn/koreng/internal/domain"
)

// Default output layouts for temporal fields without a custom format.
const (
	DefaultDateFormat     = "02.01.2006"
	DefaultDateTimeFormat = "02.01.2006 15:04:05"
)

// layouts accepted when a driver hands temporal values back as text.
var textTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// Project converts database rows (column name to value) into output mappings
// keyed by each visible field's output key.
func Project(desc *domain.EntityDescriptor, rows []map[string]any) []map[string]any {
	fields := desc.VisibleFields()
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		out = append(out, projectRow(fields, row))
	}
	return out
}

// ProjectRow converts a single row.
func ProjectRow(desc *domain.EntityDescriptor, row map[string]any) map[string]any {
	return projectRow(desc.VisibleFields(), row)
}

func projectRow(fields []domain.FieldDescriptor, row map[string]any) map[string]any {
	projected := make(map[string]any, len(fields))
	for _, field := range fields {
		projected[field.OutputKey()] = ProjectValue(field, row[field.Column])
	}
	return projected
}

// ProjectValue renders one column value according to the field's kind.
func ProjectValue(field domain.FieldDescriptor, value any) any {
	if value == nil {
		return nil
	}
	if raw, ok := value.([]byte); ok {
		value = string(raw)
	}

	switch field.Kind {
	case domain.FieldKindDate:
		return formatTemporal(value, field.Format, DefaultDateFormat)
	case domain.FieldKindDateTime:
		return formatTemporal(value, field.Format, DefaultDateTimeFormat)
	case domain.FieldKindBool:
		return normalizeBool(value)
	case domain.FieldKindInt, domain.FieldKindFloat:
		return normalizeNumber(value)
	default:
		return value
	}
}

func formatTemporal(value any, format, fallback string) any {
	layout := format
	if layout == "" {
		layout = fallback
	}

	switch v := value.(type) {
	case time.Time:
		return v.Format(layout)
	case *time.Time:
		if v == nil {
			return nil
		}
		return v.Format(layout)
	case pgtype.Date:
		if !v.Valid {
			return nil
		}
		return v.Time.Format(layout)
	case pgtype.Timestamp:
		if !v.Valid {
			return nil
		}
		return v.Time.Format(layout)
	case string:
		trimmed := strings.TrimSpace(v)
		for _, candidate := range textTimeLayouts {
			if parsed, err := time.Parse(candidate, trimmed); err == nil {
				return parsed.Format(layout)
			}
		}
		return v
	default:
		return value
	}
}

func normalizeBool(value any) any {
	switch v := value.(type) {
	case int64:
		return v != 0
	case int32:
		return v != 0
	case int:
		return v != 0
	default:
		return value
	}
}

func normalizeNumber(value any) any {
	switch v := value.(type) {
	case pgtype.Numeric:
		if !v.Valid {
			return nil
		}
		f, err := v.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	default:
		return value
	}
}
