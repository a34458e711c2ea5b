package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rpattn/koreng/internal/domain"
)

const rootAlias = "t0"

// ErrUnresolvedPath is returned when a dotted path does not match the field tables.
var ErrUnresolvedPath = errors.New("unresolved field path")

// Describer resolves entity names to descriptors.
type Describer interface {
	Describe(name string) (*domain.EntityDescriptor, error)
}

// Operand is a resolved field path: the SQL expression addressing the column
// (or the join alias when the path ends on a relationship) and the field it names.
type Operand struct {
	Expr   string
	Field  domain.FieldDescriptor
	Entity *domain.EntityDescriptor

	joins []joinSpec
	// toMany is set when a hop can match several rows per parent row.
	toMany bool
}

type joinSpec struct {
	path  string
	alias string
	table string
	on    string
}

func (j joinSpec) clause() string {
	return fmt.Sprintf("%s %s ON %s", j.table, j.alias, j.on)
}

// scope is the query root of one request. It owns the joins accepted so far;
// resolving a path never mutates it, attach does.
type scope struct {
	root      *domain.EntityDescriptor
	describer Describer

	joins   []joinSpec
	aliases map[string]string
}

func newScope(root *domain.EntityDescriptor, describer Describer) *scope {
	return &scope{
		root:      root,
		describer: describer,
		aliases:   make(map[string]string),
	}
}

// resolve walks a dotted path from the root entity. Every segment but the last
// must be a relationship; relationship segments become INNER joins, reusing the
// alias of a prefix that was already joined.
func (s *scope) resolve(path string) (Operand, error) {
	segments := strings.Split(path, ".")

	entity := s.root
	alias := rootAlias
	prefix := ""
	toMany := false
	var pending []joinSpec

	for i, segment := range segments {
		field, ok := entity.Field(segment)
		if !ok {
			return Operand{}, fmt.Errorf("%w: %s has no field %q", ErrUnresolvedPath, entity.Name, segment)
		}
		last := i == len(segments)-1

		if !field.IsRelationship() {
			if !last {
				return Operand{}, fmt.Errorf("%w: %s.%s is not a relationship", ErrUnresolvedPath, entity.Name, segment)
			}
			return Operand{Expr: alias + "." + field.Column, Field: field, Entity: entity, joins: pending, toMany: toMany}, nil
		}

		if prefix == "" {
			prefix = segment
		} else {
			prefix += "." + segment
		}

		target, err := s.describer.Describe(field.Relation.Target)
		if err != nil {
			return Operand{}, fmt.Errorf("%w: %s: %v", ErrUnresolvedPath, prefix, err)
		}
		if field.Relation.RemoteColumn != target.Key {
			toMany = true
		}

		joinAlias, joined := s.aliases[prefix]
		if !joined {
			joinAlias = fmt.Sprintf("t%d", len(s.joins)+len(pending)+1)
			pending = append(pending, joinSpec{
				path:  prefix,
				alias: joinAlias,
				table: target.Table,
				on:    fmt.Sprintf("%s.%s = %s.%s", joinAlias, field.Relation.RemoteColumn, alias, field.Relation.LocalColumn),
			})
		}

		alias = joinAlias
		entity = target
		if last {
			return Operand{Expr: alias, Field: field, Entity: target, joins: pending, toMany: toMany}, nil
		}
	}

	return Operand{}, fmt.Errorf("%w: empty path", ErrUnresolvedPath)
}

// attach adds the joins an accepted operand depends on.
func (s *scope) attach(op Operand) {
	for _, join := range op.joins {
		if _, ok := s.aliases[join.path]; ok {
			continue
		}
		s.aliases[join.path] = join.alias
		s.joins = append(s.joins, join)
	}
}
