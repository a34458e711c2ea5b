package domain

import "errors"

var (
	// ErrEntityNotFound is returned when an entity name does not resolve to a registered type.
	ErrEntityNotFound = errors.New("entity type not found")
	// ErrInvalidSortPath is returned when a sort field cannot be resolved against the entity.
	ErrInvalidSortPath = errors.New("invalid sort path")
	// ErrLayoutNotFound is returned when no grid layout was saved for an entity.
	ErrLayoutNotFound = errors.New("grid layout not found")
)
