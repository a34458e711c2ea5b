package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/rpattn/koreng/internal/domain"
)

var (
	// ErrInvalidClause marks a clause whose shape is unusable (missing value or values).
	ErrInvalidClause = errors.New("invalid filter clause")
	// ErrUnsupportedOperator marks an operator outside the known set.
	ErrUnsupportedOperator = errors.New("unsupported filter operator")
)

type compileFunc func(op Operand, clause domain.FilterClause) (sq.Sqlizer, error)

// TimeArg renders a parsed date or dateTime filter value as the bind argument
// compared against a column of the given kind.
type TimeArg func(kind domain.FieldKind, value time.Time) any

// Compiler turns filter clauses into squirrel predicates. Clauses that cannot be
// compiled are logged and skipped; they never fail the request.
type Compiler struct {
	logger    *slog.Logger
	timeArg   TimeArg
	operators map[domain.Operator]compileFunc
}

// NewCompiler creates a compiler logging dropped clauses to logger. Temporal
// values are bound as time.Time until SetTimeArg says otherwise.
func NewCompiler(logger *slog.Logger) *Compiler {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Compiler{logger: logger}
	c.operators = map[domain.Operator]compileFunc{
		domain.OperatorIs:              c.compileIs,
		domain.OperatorNot:             c.compileNot,
		domain.OperatorAfter:           c.temporal(func(e string, v any) sq.Sqlizer { return sq.Gt{e: v} }),
		domain.OperatorOnOrAfter:       c.temporal(func(e string, v any) sq.Sqlizer { return sq.GtOrEq{e: v} }),
		domain.OperatorBefore:          c.temporal(func(e string, v any) sq.Sqlizer { return sq.Lt{e: v} }),
		domain.OperatorOnOrBefore:      c.temporal(func(e string, v any) sq.Sqlizer { return sq.LtOrEq{e: v} }),
		domain.OperatorContains:        like("%", "%"),
		domain.OperatorStartsWith:      like("", "%"),
		domain.OperatorEndsWith:        like("%", ""),
		domain.OperatorEquals:          compileEquals,
		domain.OperatorIsEmpty:         compileIsEmpty,
		domain.OperatorIsNotEmpty:      compileIsNotEmpty,
		domain.OperatorNumEq:           numeric(func(e string, v any) sq.Sqlizer { return sq.Eq{e: v} }),
		domain.OperatorNumNotEq:        numeric(func(e string, v any) sq.Sqlizer { return sq.NotEq{e: v} }),
		domain.OperatorNumGt:           numeric(func(e string, v any) sq.Sqlizer { return sq.Gt{e: v} }),
		domain.OperatorNumGte:          numeric(func(e string, v any) sq.Sqlizer { return sq.GtOrEq{e: v} }),
		domain.OperatorNumLt:           numeric(func(e string, v any) sq.Sqlizer { return sq.Lt{e: v} }),
		domain.OperatorNumLte:          numeric(func(e string, v any) sq.Sqlizer { return sq.LtOrEq{e: v} }),
		domain.OperatorIsAnyOf:         compileIsAnyOf,
		domain.OperatorIsNotEmptyArray: compileIsNotEmptyArray,
	}
	return c
}

// SetTimeArg changes how temporal values are bound. A nil fn binds time.Time.
func (c *Compiler) SetTimeArg(fn TimeArg) {
	c.timeArg = fn
}

// bind passes non-temporal values through unchanged.
func (c *Compiler) bind(op Operand, value any) any {
	t, ok := value.(time.Time)
	if !ok || c.timeArg == nil {
		return value
	}
	return c.timeArg(op.Field.Kind, t)
}

// Validate checks the shape of a clause before compilation.
func Validate(clause domain.FilterClause) error {
	if clause.Operator == domain.OperatorIsAnyOf && len(clause.AnyOfValues) == 0 {
		return fmt.Errorf("%w: filter %s of field %s has no values", ErrInvalidClause, clause.Operator, clause.Field)
	}
	if clause.RequiresValue() && clause.Value == nil {
		return fmt.Errorf("%w: filter %s of field %s is empty", ErrInvalidClause, clause.Operator, clause.Field)
	}
	return nil
}

// compileGroup compiles every acceptable clause of a group, attaching the joins
// of accepted clauses to the scope. isNotEmptyArray clauses contribute a join
// but no predicate.
func (c *Compiler) compileGroup(ctx context.Context, s *scope, group string, clauses []domain.FilterClause) []sq.Sqlizer {
	predicates := make([]sq.Sqlizer, 0, len(clauses))
	for _, clause := range clauses {
		predicate, op, err := c.compile(s, clause)
		if err != nil {
			c.logger.WarnContext(ctx, "skipping filter clause",
				slog.String("entity", s.root.Name),
				slog.String("group", group),
				slog.String("field", clause.Field),
				slog.String("operator", string(clause.Operator)),
				slog.Any("error", err),
			)
			continue
		}
		s.attach(op)
		if predicate != nil {
			predicates = append(predicates, predicate)
		}
	}
	return predicates
}

func (c *Compiler) compile(s *scope, clause domain.FilterClause) (sq.Sqlizer, Operand, error) {
	if err := Validate(clause); err != nil {
		return nil, Operand{}, err
	}

	fn, ok := c.operators[clause.Operator]
	if !ok {
		return nil, Operand{}, fmt.Errorf("%w: %q", ErrUnsupportedOperator, clause.Operator)
	}

	op, err := s.resolve(clause.Field)
	if err != nil {
		return nil, Operand{}, err
	}
	if op.Field.IsRelationship() && clause.Operator != domain.OperatorIsNotEmptyArray {
		return nil, Operand{}, fmt.Errorf("%w: %s needs a scalar field, %s is a relationship",
			ErrInvalidClause, clause.Operator, clause.Field)
	}

	predicate, err := fn(op, clause)
	if err != nil {
		return nil, Operand{}, err
	}
	return predicate, op, nil
}

func (c *Compiler) compileIs(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
	switch *clause.Value {
	case "true", "false":
		flag := *clause.Value == "true"
		if op.Field.Kind == domain.FieldKindBool {
			return sq.Eq{op.Expr: flag}, nil
		}
		if flag {
			return sq.Eq{op.Expr: 1}, nil
		}
		return sq.Eq{op.Expr: 0}, nil
	}

	value, err := coerce(equalityChain, *clause.Value)
	if err != nil {
		return nil, err
	}
	return sq.Eq{op.Expr: c.bind(op, value)}, nil
}

func (c *Compiler) compileNot(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
	value, err := coerce(equalityChain, *clause.Value)
	if err != nil {
		return nil, err
	}
	return sq.NotEq{op.Expr: c.bind(op, value)}, nil
}

func (c *Compiler) temporal(build func(expr string, value any) sq.Sqlizer) compileFunc {
	return func(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
		value, err := coerce(temporalChain, *clause.Value)
		if err != nil {
			return nil, err
		}
		return build(op.Expr, c.bind(op, value)), nil
	}
}

func numeric(build func(expr string, value any) sq.Sqlizer) compileFunc {
	return func(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
		value, err := coerce(numericChain, *clause.Value)
		if err != nil {
			return nil, err
		}
		return build(op.Expr, value), nil
	}
}

func like(prefix, suffix string) compileFunc {
	return func(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
		return sq.Like{textExpr(op): prefix + *clause.Value + suffix}, nil
	}
}

func compileEquals(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
	return sq.Eq{textExpr(op): *clause.Value}, nil
}

// Only text columns can hold ''; comparing other column types to it is a type error on Postgres.
func compileIsEmpty(op Operand, _ domain.FilterClause) (sq.Sqlizer, error) {
	if op.Field.Kind != domain.FieldKindString {
		return sq.Eq{op.Expr: nil}, nil
	}
	return sq.Or{sq.Eq{op.Expr: nil}, sq.Eq{op.Expr: ""}}, nil
}

func compileIsNotEmpty(op Operand, _ domain.FilterClause) (sq.Sqlizer, error) {
	if op.Field.Kind != domain.FieldKindString {
		return sq.NotEq{op.Expr: nil}, nil
	}
	return sq.And{sq.NotEq{op.Expr: nil}, sq.NotEq{op.Expr: ""}}, nil
}

func compileIsAnyOf(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
	return sq.Eq{textExpr(op): append([]string(nil), clause.AnyOfValues...)}, nil
}

// textExpr addresses the operand as text; string operators compare the text
// form of non-text columns.
func textExpr(op Operand) string {
	if op.Field.Kind == domain.FieldKindString {
		return op.Expr
	}
	return fmt.Sprintf("CAST(%s AS TEXT)", op.Expr)
}

func compileIsNotEmptyArray(op Operand, clause domain.FilterClause) (sq.Sqlizer, error) {
	if !op.Field.IsRelationship() {
		return nil, fmt.Errorf("%w: %s needs a relationship, %s is a %s field",
			ErrInvalidClause, clause.Operator, clause.Field, op.Field.Kind)
	}
	return nil, nil
}
