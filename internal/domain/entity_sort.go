package domain

import "strings"

// SortDirection represents ordering direction for sortable fields.
type SortDirection string

const (
	SortDirectionAsc  SortDirection = "asc"
	SortDirectionDesc SortDirection = "desc"
)

// IsDesc reports whether the direction is descending. Anything but "desc" sorts ascending.
func (d SortDirection) IsDesc() bool {
	return strings.EqualFold(string(d), string(SortDirectionDesc))
}

// SortClause orders results by a possibly dotted field path.
type SortClause struct {
	Field     string        `json:"field"`
	Direction SortDirection `json:"sort"`
}
