package query

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpattn/koreng/internal/domain"
	"github.com/rpattn/koreng/internal/entities"
)

func strPtr(s string) *string { return &s }

func clause(field string, op domain.Operator, value string) domain.FilterClause {
	return domain.FilterClause{Field: field, Operator: op, Value: strPtr(value)}
}

type compiled struct {
	sql  string
	args []any
	op   Operand
}

func compileOne(t *testing.T, entity string, c domain.FilterClause) (compiled, error) {
	t.Helper()
	s := newTestScope(t, entities.NewRegistry(), entity)
	predicate, op, err := NewCompiler(nil).compile(s, c)
	if err != nil {
		return compiled{}, err
	}
	if predicate == nil {
		return compiled{op: op}, nil
	}
	sql, args, err := predicate.ToSql()
	require.NoError(t, err)
	return compiled{sql: sql, args: args, op: op}, nil
}

func TestCompileOperators(t *testing.T) {
	tests := []struct {
		name   string
		entity string
		clause domain.FilterClause
		sql    string
		args   []any
	}{
		{
			name:   "is true on boolean field",
			entity: "Customer",
			clause: clause("vip", domain.OperatorIs, "true"),
			sql:    "t0.vip = ?",
			args:   []any{true},
		},
		{
			name:   "is false on numeric field",
			entity: "Customer",
			clause: clause("status", domain.OperatorIs, "false"),
			sql:    "t0.status = ?",
			args:   []any{0},
		},
		{
			name:   "is true on numeric field",
			entity: "Customer",
			clause: clause("status", domain.OperatorIs, "true"),
			sql:    "t0.status = ?",
			args:   []any{1},
		},
		{
			name:   "is date",
			entity: "Customer",
			clause: clause("birthDate", domain.OperatorIs, "1990-05-17"),
			sql:    "t0.birth_date = ?",
			args:   []any{time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:   "is date time",
			entity: "Customer",
			clause: clause("createdAt", domain.OperatorIs, "2024-01-02T08:15:00"),
			sql:    "t0.created_at = ?",
			args:   []any{time.Date(2024, 1, 2, 8, 15, 0, 0, time.UTC)},
		},
		{
			name:   "is string",
			entity: "Customer",
			clause: clause("name", domain.OperatorIs, "Alice"),
			sql:    "t0.name = ?",
			args:   []any{"Alice"},
		},
		{
			name:   "not has no boolean special case",
			entity: "Customer",
			clause: clause("name", domain.OperatorNot, "true"),
			sql:    "t0.name <> ?",
			args:   []any{"true"},
		},
		{
			name:   "after",
			entity: "Customer",
			clause: clause("birthDate", domain.OperatorAfter, "2000-01-01"),
			sql:    "t0.birth_date > ?",
			args:   []any{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:   "on or after",
			entity: "Customer",
			clause: clause("birthDate", domain.OperatorOnOrAfter, "2000-01-01"),
			sql:    "t0.birth_date >= ?",
			args:   []any{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:   "before falls back to date time",
			entity: "Customer",
			clause: clause("createdAt", domain.OperatorBefore, "2024-06-30T23:59"),
			sql:    "t0.created_at < ?",
			args:   []any{time.Date(2024, 6, 30, 23, 59, 0, 0, time.UTC)},
		},
		{
			name:   "on or before",
			entity: "Customer",
			clause: clause("birthDate", domain.OperatorOnOrBefore, "2000-01-01"),
			sql:    "t0.birth_date <= ?",
			args:   []any{time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		{
			name:   "contains",
			entity: "Product",
			clause: clause("status", domain.OperatorContains, "A"),
			sql:    "t0.status LIKE ?",
			args:   []any{"%A%"},
		},
		{
			name:   "starts with",
			entity: "Product",
			clause: clause("sku", domain.OperatorStartsWith, "SKU-"),
			sql:    "t0.sku LIKE ?",
			args:   []any{"SKU-%"},
		},
		{
			name:   "ends with",
			entity: "Product",
			clause: clause("sku", domain.OperatorEndsWith, "-X"),
			sql:    "t0.sku LIKE ?",
			args:   []any{"%-X"},
		},
		{
			name:   "contains on a number matches its text",
			entity: "Order",
			clause: clause("quantity", domain.OperatorContains, "1"),
			sql:    "CAST(t0.quantity AS TEXT) LIKE ?",
			args:   []any{"%1%"},
		},
		{
			name:   "equals compares text even for dates",
			entity: "Customer",
			clause: clause("name", domain.OperatorEquals, "2024-01-01"),
			sql:    "t0.name = ?",
			args:   []any{"2024-01-01"},
		},
		{
			name:   "is empty on text",
			entity: "Customer",
			clause: clause("name", domain.OperatorIsEmpty, ""),
			sql:    "(t0.name IS NULL OR t0.name = ?)",
			args:   []any{""},
		},
		{
			name:   "is empty on date",
			entity: "Customer",
			clause: clause("birthDate", domain.OperatorIsEmpty, ""),
			sql:    "t0.birth_date IS NULL",
		},
		{
			name:   "is not empty on text",
			entity: "Customer",
			clause: clause("name", domain.OperatorIsNotEmpty, ""),
			sql:    "(t0.name IS NOT NULL AND t0.name <> ?)",
			args:   []any{""},
		},
		{
			name:   "numeric greater than",
			entity: "Customer",
			clause: clause("creditLimit", domain.OperatorNumGt, "1500.5"),
			sql:    "t0.credit_limit > ?",
			args:   []any{1500.5},
		},
		{
			name:   "numeric not equal",
			entity: "Order",
			clause: clause("quantity", domain.OperatorNumNotEq, "3"),
			sql:    "t0.quantity <> ?",
			args:   []any{3.0},
		},
		{
			name:   "numeric less or equal",
			entity: "Order",
			clause: clause("quantity", domain.OperatorNumLte, "3"),
			sql:    "t0.quantity <= ?",
			args:   []any{3.0},
		},
		{
			name:   "is any of text",
			entity: "Order",
			clause: domain.FilterClause{Field: "state", Operator: domain.OperatorIsAnyOf, AnyOfValues: []string{"NEW", "PAID"}},
			sql:    "t0.state IN (?,?)",
			args:   []any{"NEW", "PAID"},
		},
		{
			name:   "is any of number compares as text",
			entity: "Order",
			clause: domain.FilterClause{Field: "quantity", Operator: domain.OperatorIsAnyOf, AnyOfValues: []string{"1", "2"}},
			sql:    "CAST(t0.quantity AS TEXT) IN (?,?)",
			args:   []any{"1", "2"},
		},
		{
			name:   "dotted path",
			entity: "Order",
			clause: clause("customer.address.city", domain.OperatorEquals, "Berlin"),
			sql:    "t2.city = ?",
			args:   []any{"Berlin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compileOne(t, tt.entity, tt.clause)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, got.sql)
			if len(tt.args) == 0 {
				assert.Empty(t, got.args)
			} else {
				assert.Equal(t, tt.args, got.args)
			}
		})
	}
}

func TestCompileIsNotEmptyArrayOnlyJoins(t *testing.T) {
	got, err := compileOne(t, "Customer", domain.FilterClause{Field: "orders", Operator: domain.OperatorIsNotEmptyArray})
	require.NoError(t, err)
	assert.Empty(t, got.sql)
	require.Len(t, got.op.joins, 1)
	assert.Equal(t, "orders t1 ON t1.customer_id = t0.id", got.op.joins[0].clause())
}

func TestCompileRejects(t *testing.T) {
	tests := []struct {
		name   string
		entity string
		clause domain.FilterClause
		err    error
	}{
		{"missing value", "Customer", domain.FilterClause{Field: "name", Operator: domain.OperatorContains}, ErrInvalidClause},
		{"empty any of", "Order", domain.FilterClause{Field: "state", Operator: domain.OperatorIsAnyOf}, ErrInvalidClause},
		{"unknown operator", "Customer", clause("name", "like", "x"), ErrUnsupportedOperator},
		{"unknown field", "Customer", clause("nickname", domain.OperatorEquals, "x"), ErrUnresolvedPath},
		{"scalar operator on relationship", "Customer", clause("orders", domain.OperatorEquals, "x"), ErrInvalidClause},
		{"array operator on scalar", "Customer", domain.FilterClause{Field: "name", Operator: domain.OperatorIsNotEmptyArray}, ErrInvalidClause},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileOne(t, tt.entity, tt.clause)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	for _, raw := range []string{"soon", "2024-13-45"} {
		_, err := compileOne(t, "Customer", clause("birthDate", domain.OperatorAfter, raw))
		assert.Error(t, err, raw)
	}
	_, err := compileOne(t, "Customer", clause("creditLimit", domain.OperatorNumGte, "lots"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(domain.FilterClause{Field: "orders", Operator: domain.OperatorIsNotEmptyArray}))
	assert.NoError(t, Validate(domain.FilterClause{Field: "state", Operator: domain.OperatorIsAnyOf, AnyOfValues: []string{"NEW"}}))
	assert.NoError(t, Validate(clause("name", domain.OperatorEquals, "")))
	assert.ErrorIs(t, Validate(domain.FilterClause{Field: "name", Operator: domain.OperatorEquals}), ErrInvalidClause)
	assert.ErrorIs(t, Validate(domain.FilterClause{Field: "state", Operator: domain.OperatorIsAnyOf, AnyOfValues: []string{}}), ErrInvalidClause)
}

func TestCompileGroupSkipsAndLogsBadClauses(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	s := newTestScope(t, entities.NewRegistry(), "Order")

	predicates := NewCompiler(logger).compileGroup(context.Background(), s, "filters", []domain.FilterClause{
		clause("customer.nickname", domain.OperatorEquals, "x"),
		clause("quantity", domain.OperatorNumGt, "two"),
		clause("state", domain.OperatorEquals, "NEW"),
	})

	require.Len(t, predicates, 1)
	assert.Empty(t, s.joins, "rejected clauses must not leave joins behind")
	assert.Contains(t, logs.String(), "skipping filter clause")
	assert.Contains(t, logs.String(), "field=customer.nickname")
	assert.Contains(t, logs.String(), "field=quantity")
}
