package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

// Querier runs generated SQL and hands rows back as column name to value maps.
type Querier interface {
	QueryMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
	Ping(ctx context.Context) error
}

type poolQuerier struct {
	pool *pgxpool.Pool
}

func (q *poolQuerier) QueryMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := q.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	result, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("collect rows: %w", err)
	}
	return result, nil
}

func (q *poolQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := q.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (q *poolQuerier) Ping(ctx context.Context) error {
	return q.pool.Ping(ctx)
}

type sqlxQuerier struct {
	db *sqlx.DB
}

// NewSQLXQuerier wraps a database/sql handle.
func NewSQLXQuerier(db *sqlx.DB) Querier {
	return &sqlxQuerier{db: db}
}

func (q *sqlxQuerier) QueryMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := q.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var result []map[string]any
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return result, nil
}

func (q *sqlxQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("exec: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func (q *sqlxQuerier) Ping(ctx context.Context) error {
	return q.db.PingContext(ctx)
}
