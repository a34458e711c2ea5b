package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/rpattn/koreng/internal/domain"
)

// SearchRepository executes composed search statements.
type SearchRepository interface {
	Find(ctx context.Context, stmt sq.Sqlizer) ([]map[string]any, error)
	Count(ctx context.Context, stmt sq.Sqlizer) (int64, error)
}

// LayoutRepository persists grid layouts per entity type.
type LayoutRepository interface {
	Get(ctx context.Context, entityName string) (domain.GridLayout, error)
	Save(ctx context.Context, layout domain.GridLayout) (domain.GridLayout, error)
}
