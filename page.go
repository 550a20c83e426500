package qfilter

// MaxLimit caps the number of rows a single request may ask for. An
// unspecified limit also resolves to this ceiling, so every composed query
// carries a LIMIT clause.
const MaxLimit = 10000

// Page describes the pagination and ordering of one request. The zero value
// means first page, default limit, store order. It is built per request and
// discarded after the query is composed.
type Page struct {
	// Limit is the requested row cap. Zero means MaxLimit; larger requests
	// are clamped to MaxLimit, never raised.
	Limit int
	// Offset is the number of rows to skip. Zero omits the OFFSET clause
	// entirely instead of emitting OFFSET 0.
	Offset int
	// Order names the column to order by. Empty leaves the order to the
	// store.
	Order string
	// Desc reverses the order. Ascending is the default.
	Desc bool
}

// Cap resolves the effective limit for the request.
func (p Page) Cap() int {
	if p.Limit <= 0 || p.Limit > MaxLimit {
		return MaxLimit
	}
	return p.Limit
}
