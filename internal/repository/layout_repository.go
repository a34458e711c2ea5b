package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/rpattn/koreng/internal/db"
	"github.com/rpattn/koreng/internal/domain"
)

const layoutTable = "grid_layouts"

var storedTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
}

type layoutRepository struct {
	querier db.Querier
	builder sq.StatementBuilderType
	now     func() time.Time
}

// NewLayoutRepository creates a layout repository for the given dialect.
func NewLayoutRepository(querier db.Querier, dialect db.Dialect) LayoutRepository {
	return &layoutRepository{
		querier: querier,
		builder: sq.StatementBuilder.PlaceholderFormat(dialect.Placeholder()),
		now:     time.Now,
	}
}

// Get loads the layout saved for an entity.
func (r *layoutRepository) Get(ctx context.Context, entityName string) (domain.GridLayout, error) {
	sql, args, err := r.builder.
		Select("settings", "updated_at").
		From(layoutTable).
		Where(sq.Eq{"entity_name": entityName}).
		ToSql()
	if err != nil {
		return domain.GridLayout{}, fmt.Errorf("build layout query: %w", err)
	}

	rows, err := r.querier.QueryMaps(ctx, sql, args...)
	if err != nil {
		return domain.GridLayout{}, fmt.Errorf("get layout: %w", err)
	}
	if len(rows) == 0 {
		return domain.GridLayout{}, fmt.Errorf("%w: %s", domain.ErrLayoutNotFound, entityName)
	}

	updatedAt, err := toTime(rows[0]["updated_at"])
	if err != nil {
		return domain.GridLayout{}, fmt.Errorf("decode layout timestamp: %w", err)
	}

	layout, err := domain.GridLayoutFromJSON(entityName, toBytes(rows[0]["settings"]), updatedAt)
	if err != nil {
		return domain.GridLayout{}, fmt.Errorf("decode layout settings: %w", err)
	}
	return layout, nil
}

// Save inserts or replaces the layout of an entity.
func (r *layoutRepository) Save(ctx context.Context, layout domain.GridLayout) (domain.GridLayout, error) {
	settings, err := layout.SettingsJSON()
	if err != nil {
		return domain.GridLayout{}, fmt.Errorf("marshal layout settings: %w", err)
	}
	layout.UpdatedAt = r.now().UTC().Truncate(time.Second)

	sql, args, err := r.builder.
		Insert(layoutTable).
		Columns("entity_name", "settings", "updated_at").
		Values(layout.EntityName, string(settings), layout.UpdatedAt).
		Suffix("ON CONFLICT (entity_name) DO UPDATE SET settings = EXCLUDED.settings, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return domain.GridLayout{}, fmt.Errorf("build layout upsert: %w", err)
	}

	if _, err := r.querier.Exec(ctx, sql, args...); err != nil {
		return domain.GridLayout{}, fmt.Errorf("save layout: %w", err)
	}
	return layout, nil
}

func toBytes(value any) []byte {
	switch v := value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), nil
	case []byte:
		return toTime(string(v))
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range storedTimeLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised timestamp %q", v)
	case nil:
		return time.Time{}, nil
	default:
		return time.Time{}, fmt.Errorf("unexpected timestamp type %T", value)
	}
}
