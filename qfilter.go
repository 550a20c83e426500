// Package qfilter parses flat URL query-string parameters into filter
// descriptors applied to a relational source.
//
// Each query key names a field and, after a double underscore, an operator:
//
//	GET /deliveries?delivery_id__eq=55&delivery_date__gt=2016-01-01T01:00:00
//
// A key without an operator is an equality filter. Unary operators
// (is_null, is_not_null, is_true, is_false) ignore the value. The values of
// in and not_in are comma separated lists. A key of the form
//
//	name__with__related_field__related_op=value
//
// filters through a declared relationship, one hop deep: it keeps only rows
// with at least one related row matching related_field related_op value.
//
// The reserved keys _limit, _offset, _order and _desc configure pagination
// and ordering and are never treated as filters; see the httpquery package.
//
// This package implements the grammar only. The gormquery package resolves
// descriptors against a schema and composes the executable query.
package qfilter

import "strings"

// Delimiter separates the field name from the operator in a query key.
const Delimiter = "__"

// Filter is the parsed form of a single query-string entry. Value is unused
// for unary operators.
type Filter struct {
	Name  string
	Op    string
	Value string
}

// SplitOperator splits a raw query key into a field name and an operator
// name on the last occurrence of Delimiter. A key without a delimiter is an
// equality filter. The operator is lowercased only when it is exactly two
// characters long; longer tokens keep their case so that embedded
// relationship sub-expressions survive the split intact.
func SplitOperator(key string) (name, op string, err error) {
	name, op = key, "eq"
	if i := strings.LastIndex(key, Delimiter); i >= 0 {
		name, op = key[:i], key[i+len(Delimiter):]
		if len(op) == 2 {
			op = strings.ToLower(op)
		}
	}
	if name == "" {
		return "", "", NewFieldError(ErrInvalidParameter, key)
	}
	return name, op, nil
}

// ParseFilter parses one raw key/value pair into a filter descriptor.
//
// A key with exactly three delimiter occurrences encodes a one-hop
// relationship filter (name__with__related_field__related_op); the related
// field, the related operator and the original value are repacked into a
// single "related_field__related_op=value" string carried as the filter
// value, so a flat query key can express a nested filter without a nested
// grammar.
func ParseFilter(key, value string) (Filter, error) {
	if strings.Count(key, Delimiter) == 3 {
		parts := strings.Split(key, Delimiter)
		if parts[0] == "" {
			return Filter{}, NewFieldError(ErrInvalidParameter, key)
		}
		return Filter{
			Name:  parts[0],
			Op:    parts[1],
			Value: parts[2] + Delimiter + parts[3] + "=" + value,
		}, nil
	}
	name, op, err := SplitOperator(key)
	if err != nil {
		return Filter{}, err
	}
	return Filter{Name: name, Op: op, Value: value}, nil
}

// BuildFilters turns a mapping of raw query keys to raw values into filter
// descriptors. The order of the result follows the map and is therefore not
// stable across calls. No schema validation happens here; gormquery.Apply
// has the type information and rejects unknown columns and illegal
// operators.
func BuildFilters(query map[string]string) ([]Filter, error) {
	filters := make([]Filter, 0, len(query))
	for key, value := range query {
		f, err := ParseFilter(key, value)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return filters, nil
}
