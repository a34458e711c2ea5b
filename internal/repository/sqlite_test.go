package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpattn/koreng/internal/db"
)

func openTestStore(t *testing.T) *db.Store {
	t.Helper()
	cfg := db.DefaultConfig()
	cfg.Driver = db.DialectSQLite
	cfg.Path = filepath.Join(t.TempDir(), "repository.db")

	store, err := db.Open(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(store.Close)
	return store
}
