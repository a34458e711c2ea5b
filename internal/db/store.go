package db

import (
	"context"
	"fmt"
)

// Store is the configured backing database: a querier plus the SQL dialect it speaks.
type Store struct {
	Querier Querier
	Dialect Dialect

	close func()
}

// Open connects to the database selected by config.Driver and applies the
// embedded migrations when config.Migrate is set.
func Open(ctx context.Context, config Config) (*Store, error) {
	switch config.Driver {
	case DialectPostgres, "":
		conn, err := NewConnection(ctx, config)
		if err != nil {
			return nil, err
		}
		if config.Migrate {
			if err := RunMigrations(config); err != nil {
				conn.Close()
				return nil, err
			}
		}
		return &Store{Querier: conn.Querier(), Dialect: DialectPostgres, close: conn.Close}, nil

	case DialectSQLite:
		handle, err := OpenSQLite(ctx, config.Path)
		if err != nil {
			return nil, err
		}
		if config.Migrate {
			if err := RunSQLiteMigrations(handle); err != nil {
				handle.Close()
				return nil, err
			}
		}
		return &Store{
			Querier: NewSQLXQuerier(handle),
			Dialect: DialectSQLite,
			close:   func() { _ = handle.Close() },
		}, nil

	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}
