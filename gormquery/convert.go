package gormquery

import (
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/theplant/qfilter"
)

// convertValue turns the raw string from the query into the value the column
// compares against. Boolean columns never reach here: their operators are
// unary. Timestamps go through a permissive parser accepting ISO-8601 and
// the common human-readable forms.
func convertValue(kind Kind, field, raw string) (any, error) {
	switch kind {
	case KindInteger:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, qfilter.NewFieldError(qfilter.ErrConversion, field)
		}
		return n, nil
	case KindText:
		return raw, nil
	case KindTimestamp:
		t, err := dateparse.ParseAny(raw)
		if err != nil {
			return nil, qfilter.NewFieldError(qfilter.ErrConversion, field)
		}
		return t, nil
	}
	return nil, qfilter.NewFieldError(qfilter.ErrConversion, field)
}

// convertList splits a comma separated raw value, trims surrounding
// whitespace from each segment and converts the segments independently.
// Empty segments are converted like any other value, so they fail for
// integers and timestamps and pass through as empty text.
func convertList(kind Kind, field, raw string) ([]any, error) {
	segments := strings.Split(raw, ",")
	values := make([]any, 0, len(segments))
	for _, s := range segments {
		v, err := convertValue(kind, field, strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
