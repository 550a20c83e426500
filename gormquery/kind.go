// Package gormquery resolves qfilter descriptors against a GORM-mapped
// schema or a flat table selection and composes the filtered, ordered and
// paginated query without executing it.
package gormquery

import (
	"reflect"
	"time"

	"gorm.io/gorm/schema"
)

// Kind is the type axis operators are restricted by. Columns whose declared
// type maps to none of the four kinds reject every operator except the
// nullability checks.
type Kind int

const (
	KindNone Kind = iota
	KindInteger
	KindBoolean
	KindText
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindText:
		return "text"
	case KindTimestamp:
		return "timestamp"
	default:
		return "none"
	}
}

var timeType = reflect.TypeOf(time.Time{})

// fieldKind classifies a parsed schema field. GORM's normalized data type
// covers the common cases; custom data types fall back to the Go type, with
// pointer and named-type decorators unwrapped first.
func fieldKind(f *schema.Field) Kind {
	switch f.DataType {
	case schema.Int, schema.Uint:
		return KindInteger
	case schema.Bool:
		return KindBoolean
	case schema.String:
		return KindText
	case schema.Time:
		return KindTimestamp
	}
	return typeKind(f.IndirectFieldType)
}

func typeKind(t reflect.Type) Kind {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return KindInteger
	case reflect.Bool:
		return KindBoolean
	case reflect.String:
		return KindText
	case reflect.Struct:
		if t == timeType || t.ConvertibleTo(timeType) {
			return KindTimestamp
		}
	}
	return KindNone
}
