// Package httpquery adapts parsed HTTP query strings to qfilter: it consumes
// the reserved pagination keys, builds filter descriptors from the rest and
// maps the rejection taxonomy to client-facing responses.
package httpquery

import (
	"net/http"
	"net/url"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/theplant/qfilter"
)

// Reserved query keys. They configure pagination and ordering and are never
// turned into filters.
const (
	KeyLimit  = "_limit"
	KeyOffset = "_offset"
	KeyOrder  = "_order"
	KeyDesc   = "_desc"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Parse splits query-string values into filter descriptors and a page
// directive. The presence of _desc selects descending order regardless of
// its value. Repeated filter keys keep their first value. An empty _limit
// or _offset value is rejected with ErrConversion, same as any other
// value that is not an integer.
func Parse(values url.Values) ([]qfilter.Filter, qfilter.Page, error) {
	var page qfilter.Page
	query := make(map[string]string, len(values))
	for key, vals := range values {
		value := ""
		if len(vals) > 0 {
			value = vals[0]
		}
		switch key {
		case KeyLimit:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, page, qfilter.NewFieldError(qfilter.ErrConversion, key)
			}
			page.Limit = n
		case KeyOffset:
			n, err := strconv.Atoi(value)
			if err != nil {
				return nil, page, qfilter.NewFieldError(qfilter.ErrConversion, key)
			}
			page.Offset = n
		case KeyOrder:
			page.Order = value
		case KeyDesc:
			page.Desc = true
		default:
			query[key] = value
		}
	}
	filters, err := qfilter.BuildFilters(query)
	if err != nil {
		return nil, page, err
	}
	return filters, page, nil
}

// StatusCode maps a query construction error to the HTTP status the caller
// should answer with. Request-shape errors are client errors; anything else
// is a server fault.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, qfilter.ErrInvalidParameter),
		errors.Is(err, qfilter.ErrColumnNotFound),
		errors.Is(err, qfilter.ErrUnsupportedOperator),
		errors.Is(err, qfilter.ErrConversion),
		errors.Is(err, qfilter.ErrNotMapped),
		errors.Is(err, qfilter.ErrMalformedSubquery):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// WriteError answers a rejected request with the mapped status and a JSON
// body naming the offending field when one is known.
func WriteError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error()}
	var fieldErr *qfilter.FieldError
	if errors.As(err, &fieldErr) {
		body.Field = fieldErr.Field
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(err))
	_ = json.NewEncoder(w).Encode(body)
}
