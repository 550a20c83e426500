package gormquery

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithOperator traverses a declared relationship, one hop deep. It is
// dispatched through the relationship path in query.go instead of a build
// function.
const WithOperator = "with"

type arity int

const (
	unary arity = iota
	binary
	listValued
	related
)

// operator binds a grammar symbol to its arity, the column kinds it may be
// applied to and the construction of its predicate. A nil kinds slice means
// the operator is kind independent.
type operator struct {
	arity arity
	kinds []Kind
	build func(col column, value any) clause.Expression
}

// allows reports whether the operator is legal for a column of the given
// kind. The nullability checks accept every kind, including unrecognized
// ones.
func (o operator) allows(k Kind) bool {
	return o.kinds == nil || lo.Contains(o.kinds, k)
}

// column is the resolved left-hand side of a predicate: the clause column
// plus what the builders need for dialect-aware folding.
type column struct {
	clause.Column
	kind Kind
	stmt *gorm.Statement
}

// lower wraps the column in LOWER() so a comparison is case-insensitive
// regardless of the store's collation.
func (c column) lower() clause.Expr {
	return clause.Expr{SQL: fmt.Sprintf("LOWER(%s)", c.stmt.Quote(c.Column))}
}

// operators is the closed operator catalogue: assembled once at process
// start, read-only afterwards, safe for unsynchronized concurrent reads.
var operators = map[string]operator{
	"is_null": {arity: unary, build: func(col column, _ any) clause.Expression {
		return clause.Eq{Column: col.Column, Value: nil}
	}},
	"is_not_null": {arity: unary, build: func(col column, _ any) clause.Expression {
		return clause.Neq{Column: col.Column, Value: nil}
	}},
	"is_true": {arity: unary, kinds: []Kind{KindBoolean}, build: func(col column, _ any) clause.Expression {
		return clause.Eq{Column: col.Column, Value: true}
	}},
	"is_false": {arity: unary, kinds: []Kind{KindBoolean}, build: func(col column, _ any) clause.Expression {
		return clause.Eq{Column: col.Column, Value: false}
	}},
	"eq": {arity: binary, kinds: []Kind{KindInteger, KindText, KindTimestamp}, build: func(col column, v any) clause.Expression {
		return clause.Eq{Column: col.Column, Value: v}
	}},
	"ne": {arity: binary, kinds: []Kind{KindInteger, KindText, KindTimestamp}, build: func(col column, v any) clause.Expression {
		return clause.Neq{Column: col.Column, Value: v}
	}},
	"ieq": {arity: binary, kinds: []Kind{KindText}, build: func(col column, v any) clause.Expression {
		return clause.Eq{Column: col.lower(), Value: strings.ToLower(v.(string))}
	}},
	"gt": {arity: binary, kinds: []Kind{KindInteger, KindTimestamp}, build: func(col column, v any) clause.Expression {
		return clause.Gt{Column: col.Column, Value: v}
	}},
	"gte": {arity: binary, kinds: []Kind{KindInteger, KindTimestamp}, build: func(col column, v any) clause.Expression {
		return clause.Gte{Column: col.Column, Value: v}
	}},
	"lt": {arity: binary, kinds: []Kind{KindInteger, KindTimestamp}, build: func(col column, v any) clause.Expression {
		return clause.Lt{Column: col.Column, Value: v}
	}},
	"lte": {arity: binary, kinds: []Kind{KindInteger, KindTimestamp}, build: func(col column, v any) clause.Expression {
		return clause.Lte{Column: col.Column, Value: v}
	}},
	// like and not_like inherit the store's collation; ilike and not_ilike
	// fold both sides and are case-insensitive everywhere.
	"like": {arity: binary, kinds: []Kind{KindText}, build: func(col column, v any) clause.Expression {
		return clause.Like{Column: col.Column, Value: v}
	}},
	"not_like": {arity: binary, kinds: []Kind{KindText}, build: func(col column, v any) clause.Expression {
		return clause.Not(clause.Like{Column: col.Column, Value: v})
	}},
	"ilike": {arity: binary, kinds: []Kind{KindText}, build: func(col column, v any) clause.Expression {
		return clause.Like{Column: col.lower(), Value: strings.ToLower(v.(string))}
	}},
	"not_ilike": {arity: binary, kinds: []Kind{KindText}, build: func(col column, v any) clause.Expression {
		return clause.Not(clause.Like{Column: col.lower(), Value: strings.ToLower(v.(string))})
	}},
	"in": {arity: listValued, kinds: []Kind{KindInteger, KindText}, build: func(col column, v any) clause.Expression {
		return clause.IN{Column: col.Column, Values: v.([]any)}
	}},
	"not_in": {arity: listValued, kinds: []Kind{KindInteger, KindText}, build: func(col column, v any) clause.Expression {
		return clause.Not(clause.IN{Column: col.Column, Values: v.([]any)})
	}},
	WithOperator: {arity: related},
}
