package repository

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchRepositoryFindAndCount(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	for i, sku := range []string{"A-1", "A-2", "B-1"} {
		_, err := store.Querier.Exec(ctx, "INSERT INTO products (id, sku, name, price) VALUES (?, ?, ?, ?)", i+1, sku, "Product "+sku, 9.5)
		require.NoError(t, err)
	}

	repo := NewSearchRepository(store.Querier)
	builder := sq.StatementBuilder.PlaceholderFormat(store.Dialect.Placeholder())

	rows, err := repo.Find(ctx, builder.Select("t0.id", "t0.sku").From("products t0").Where(sq.Like{"t0.sku": "A%"}).OrderBy("t0.id"))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "A-1", rows[0]["sku"])
	assert.Equal(t, int64(2), rows[1]["id"])

	total, err := repo.Count(ctx, builder.Select("COUNT(DISTINCT t0.id) AS total").From("products t0"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestSearchRepositoryPropagatesQueryErrors(t *testing.T) {
	store := openTestStore(t)
	repo := NewSearchRepository(store.Querier)

	_, err := repo.Find(context.Background(), sq.Select("*").From("missing_table"))
	assert.ErrorContains(t, err, "execute search query")

	_, err = repo.Count(context.Background(), sq.Select("COUNT(*) AS total").From("missing_table"))
	assert.ErrorContains(t, err, "execute count query")
}

func TestToInt64(t *testing.T) {
	for _, value := range []any{int64(4), int32(4), 4, 4.0} {
		got, err := toInt64(value)
		require.NoError(t, err)
		assert.Equal(t, int64(4), got)
	}
	got, err := toInt64(nil)
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = toInt64("4")
	assert.Error(t, err)
}
