package gormquery

import (
	"github.com/theplant/qfilter"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Apply composes filters, ordering and pagination onto db for the given
// target and returns the not-yet-executed query. Execution stays with the
// caller.
//
// Filters are applied in descriptor order and combined with AND; zero
// filters add no restriction clause at all. The order column is resolved
// the same way as filter columns. The limit defaults to and is clamped at
// qfilter.MaxLimit; the offset is applied only when one was meaningfully
// requested.
//
// All request-shape errors surface here, during construction, never at
// execution time.
func Apply(db *gorm.DB, target Target, filters []qfilter.Filter, page qfilter.Page) (*gorm.DB, error) {
	b, err := target.bind(db)
	if err != nil {
		return nil, err
	}
	db = b.scope(db)

	exprs := make([]clause.Expression, 0, len(filters))
	for _, f := range filters {
		expr, err := buildPredicate(b, f, true)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	switch len(exprs) {
	case 0:
	case 1:
		db = db.Where(exprs[0])
	default:
		db = db.Where(clause.And(exprs...))
	}

	db = db.Limit(page.Cap())
	if page.Offset > 0 {
		db = db.Offset(page.Offset)
	}
	if page.Order != "" {
		col, err := b.column(page.Order)
		if err != nil {
			return nil, err
		}
		db = db.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{
			Column: col.Column,
			Desc:   page.Desc,
		}}})
	}
	return db, nil
}

// Scope adapts Apply to gorm's scope mechanism. Construction errors are
// attached to the session and surface on execution.
func Scope(target Target, filters []qfilter.Filter, page qfilter.Page) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil {
			return nil
		}
		q, err := Apply(db, target, filters, page)
		if err != nil {
			db.AddError(err)
			return db
		}
		return q
	}
}

// buildPredicate dispatches one filter through the operator registry: column
// resolution, arity, kind legality, value conversion, predicate
// construction. allowRelated gates the "with" operator so a relationship
// subquery cannot itself traverse another relationship.
func buildPredicate(b binding, f qfilter.Filter, allowRelated bool) (clause.Expression, error) {
	op, ok := operators[f.Op]
	if !ok {
		return nil, qfilter.NewFieldError(qfilter.ErrUnsupportedOperator, f.Name)
	}
	if op.arity == related {
		if !allowRelated {
			return nil, qfilter.NewFieldError(qfilter.ErrUnsupportedOperator, f.Name)
		}
		return buildRelated(b, f)
	}

	col, err := b.column(f.Name)
	if err != nil {
		return nil, err
	}
	if !op.allows(col.kind) {
		return nil, qfilter.NewFieldError(qfilter.ErrUnsupportedOperator, f.Name)
	}

	var value any
	switch op.arity {
	case binary:
		if value, err = convertValue(col.kind, f.Name, f.Value); err != nil {
			return nil, err
		}
	case listValued:
		var values []any
		if values, err = convertList(col.kind, f.Name, f.Value); err != nil {
			return nil, err
		}
		value = values
	}
	return op.build(col, value), nil
}
