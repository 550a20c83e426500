package gormquery

import (
	"strings"

	"github.com/theplant/qfilter"
	"gorm.io/gorm/clause"
)

// buildRelated resolves a one-hop relationship filter. The filter value
// carries the embedded "related_field__related_op=value" expression produced
// by the four-segment repack. The inner predicate is built against the
// related schema through the same operator registry, kind check included,
// and becomes a membership subquery:
//
//	owner_col IN (SELECT related_col FROM related WHERE inner)
//
// For a has-many link this keeps rows with at least one matching related
// row; for a belongs-to or has-one link it keeps rows whose related row
// exists and matches.
func buildRelated(b binding, f qfilter.Filter) (clause.Expression, error) {
	rel, err := b.relationship(f.Name)
	if err != nil {
		return nil, err
	}

	key, value, found := strings.Cut(f.Value, "=")
	if !found {
		return nil, qfilter.NewFieldError(qfilter.ErrMalformedSubquery, f.Name)
	}
	name, op, err := qfilter.SplitOperator(key)
	if err != nil {
		return nil, err
	}

	inner, err := buildPredicate(rel.related, qfilter.Filter{Name: name, Op: op, Value: value}, false)
	if err != nil {
		return nil, err
	}
	return clause.Expr{
		SQL:  "? IN (?)",
		Vars: []any{rel.ownerCol, rel.subquery(inner)},
	}, nil
}
