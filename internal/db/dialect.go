package db

import (
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/rpattn/koreng/internal/domain"
)

const (
	sqliteDateLayout     = "2006-01-02"
	sqliteDateTimeLayout = "2006-01-02 15:04:05"
)

// Dialect names a supported backing store.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// ParseDialect accepts the driver names used in configuration.
func ParseDialect(value string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "postgres", "postgresql", "pgx":
		return DialectPostgres, nil
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", value)
	}
}

// Placeholder returns the bind parameter style of the dialect.
func (d Dialect) Placeholder() sq.PlaceholderFormat {
	if d == DialectPostgres {
		return sq.Dollar
	}
	return sq.Question
}

// TimeArg renders a temporal filter value for comparison with a column of the
// given kind. SQLite keeps dates as ISO text, so values take the stored layout.
func (d Dialect) TimeArg(kind domain.FieldKind, value time.Time) any {
	if d != DialectSQLite {
		return value
	}
	if kind == domain.FieldKindDate {
		return value.Format(sqliteDateLayout)
	}
	return value.Format(sqliteDateTimeLayout)
}
