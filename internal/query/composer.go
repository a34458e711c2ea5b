package query

import (
	"context"
	"fmt"
	"log/slog"

	sq "github.com/Masterminds/squirrel"

	"github.com/rpattn/koreng/internal/domain"
)

const (
	statusField = "status"
	countColumn = "total"
)

// Statement is a composed search: the row query, the matching count query and
// the predicate both share.
type Statement struct {
	Select sq.SelectBuilder
	Count  sq.SelectBuilder
	Where  sq.Sqlizer
}

// Composer assembles search statements from a descriptor and a search request.
type Composer struct {
	builder   sq.StatementBuilderType
	describer Describer
	compiler  *Compiler
}

// ComposerOption customizes a Composer.
type ComposerOption func(*Composer)

// WithTimeArg binds temporal filter values through fn, for stores that do not
// compare dates as time.Time.
func WithTimeArg(fn TimeArg) ComposerOption {
	return func(c *Composer) {
		c.compiler.SetTimeArg(fn)
	}
}

// NewComposer creates a composer emitting placeholders in the given format.
func NewComposer(describer Describer, placeholder sq.PlaceholderFormat, logger *slog.Logger, opts ...ComposerOption) *Composer {
	c := &Composer{
		builder:   sq.StatementBuilder.PlaceholderFormat(placeholder),
		describer: describer,
		compiler:  NewCompiler(logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CountColumn is the alias of the count query's single column.
func CountColumn() string {
	return countColumn
}

// Compose builds the statement for one request. Filter clauses that fail to
// compile are skipped; a sort field that cannot be resolved, or that crosses a
// to-many relationship, fails the request.
func (c *Composer) Compose(ctx context.Context, desc *domain.EntityDescriptor, req domain.SearchRequest) (Statement, error) {
	s := newScope(desc, c.describer)

	included := c.compiler.compileGroup(ctx, s, "filters", req.Filters)
	excluded := c.compiler.compileGroup(ctx, s, "excludedColumnsFilters", req.ExcludedFilters)

	exclusion := combine(req.ExcludedFiltersLink, excluded)
	if active := activeRowPredicate(desc); active != nil {
		exclusion = and(active, exclusion)
	}
	where := and(combine(req.FiltersLink, included), exclusion)

	columns := make([]string, 0, len(desc.Fields)+len(req.Sort))
	for _, field := range desc.ScalarFields() {
		columns = append(columns, rootAlias+"."+field.Column)
	}

	orderBy := make([]string, 0, len(req.Sort))
	for i, clause := range req.Sort {
		op, err := s.resolve(clause.Field)
		switch {
		case err != nil:
		case op.Field.IsRelationship():
			err = fmt.Errorf("%s is a relationship", clause.Field)
		case op.toMany:
			// Sort keys must be single-valued per root row under SELECT DISTINCT.
			err = fmt.Errorf("%s crosses a to-many relationship", clause.Field)
		}
		if err != nil {
			return Statement{}, fmt.Errorf("%w: %s: %v", domain.ErrInvalidSortPath, clause.Field, err)
		}
		s.attach(op)

		expr := op.Expr
		if op.Entity != desc {
			// DISTINCT requires ORDER BY terms in the select list.
			alias := fmt.Sprintf("sort_%d", i)
			columns = append(columns, fmt.Sprintf("%s AS %s", op.Expr, alias))
			expr = alias
		}
		if clause.Direction.IsDesc() {
			orderBy = append(orderBy, expr+" DESC")
		} else {
			orderBy = append(orderBy, expr+" ASC")
		}
	}

	from := fmt.Sprintf("%s %s", desc.Table, rootAlias)

	rows := c.builder.Select(columns...).Distinct().From(from)
	count := c.builder.Select(fmt.Sprintf("COUNT(DISTINCT %s.%s) AS %s", rootAlias, desc.Key, countColumn)).From(from)
	for _, join := range s.joins {
		rows = rows.Join(join.clause())
		count = count.Join(join.clause())
	}
	if where != nil {
		rows = rows.Where(where)
		count = count.Where(where)
	}
	if len(orderBy) > 0 {
		rows = rows.OrderBy(orderBy...)
	}
	rows = rows.Offset(uint64(max(req.Start, 0))).Limit(uint64(max(req.Length, 0)))

	return Statement{Select: rows, Count: count, Where: where}, nil
}

// activeRowPredicate hides inactive rows of entities carrying a boolean or
// numeric status field.
func activeRowPredicate(desc *domain.EntityDescriptor) sq.Sqlizer {
	field, ok := desc.Field(statusField)
	if !ok {
		return nil
	}
	expr := rootAlias + "." + field.Column
	switch {
	case field.Kind == domain.FieldKindBool:
		return sq.Eq{expr: true}
	case field.Kind.IsNumeric():
		return sq.Gt{expr: 0}
	default:
		return nil
	}
}

// combine joins a group with OR when the link operator says so, AND otherwise.
func combine(link domain.LinkOperator, predicates []sq.Sqlizer) sq.Sqlizer {
	switch len(predicates) {
	case 0:
		return nil
	case 1:
		return predicates[0]
	}
	if link.IsOr() {
		return sq.Or(predicates)
	}
	return sq.And(predicates)
}

func and(predicates ...sq.Sqlizer) sq.Sqlizer {
	present := make([]sq.Sqlizer, 0, len(predicates))
	for _, predicate := range predicates {
		if predicate != nil {
			present = append(present, predicate)
		}
	}
	return combine(domain.LinkAnd, present)
}
