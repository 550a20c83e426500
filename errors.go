package qfilter

import (
	"fmt"

	"github.com/pkg/errors"
)

// Request-shape errors detected while composing a query. They are raised
// eagerly during construction, never at execution time, and reject the whole
// request: no partial filter application, no best-effort degradation.
var (
	// ErrInvalidParameter marks a query key with an empty field name.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrColumnNotFound marks a filter or order key naming no column on the
	// target.
	ErrColumnNotFound = errors.New("column not found")
	// ErrUnsupportedOperator marks an operator that is unknown or not legal
	// for the resolved column's kind.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrConversion marks a raw value that cannot be converted to the
	// column's native type.
	ErrConversion = errors.New("cannot convert value")
	// ErrNotMapped marks a "with" filter on an attribute that is not a
	// declared relationship.
	ErrNotMapped = errors.New("not a mapped relationship")
	// ErrMalformedSubquery marks a relationship value missing the "="
	// separating the embedded operator expression from the embedded value.
	ErrMalformedSubquery = errors.New("malformed relationship subquery")
)

// FieldError attaches the offending field name to one of the taxonomy
// errors above, so the boundary can report which part of the request was
// rejected. It unwraps to the taxonomy error for errors.Is.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err, e.Field)
}

func (e *FieldError) Unwrap() error { return e.Err }

// NewFieldError wraps a taxonomy error with the offending field name.
func NewFieldError(kind error, field string) error {
	return &FieldError{Field: field, Err: kind}
}
