package repository

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/rpattn/koreng/internal/db"
	"github.com/rpattn/koreng/internal/query"
)

type searchRepository struct {
	querier db.Querier
}

// NewSearchRepository creates a repository running statements on querier.
func NewSearchRepository(querier db.Querier) SearchRepository {
	return &searchRepository{querier: querier}
}

// Find runs a row query and returns the raw column maps.
func (r *searchRepository) Find(ctx context.Context, stmt sq.Sqlizer) ([]map[string]any, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search query: %w", err)
	}

	rows, err := r.querier.QueryMaps(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("execute search query: %w", err)
	}
	return rows, nil
}

// Count runs a count query composed by the query package.
func (r *searchRepository) Count(ctx context.Context, stmt sq.Sqlizer) (int64, error) {
	sql, args, err := stmt.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count query: %w", err)
	}

	rows, err := r.querier.QueryMaps(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("execute count query: %w", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	total, err := toInt64(rows[0][query.CountColumn()])
	if err != nil {
		return 0, fmt.Errorf("read count: %w", err)
	}
	return total, nil
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case int32:
		return int64(v), nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("unexpected count type %T", value)
	}
}
