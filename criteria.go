package postbus

// Criteria filters items by field equality.
//
// Keys are item field names: "id", "name", "queue", "tid", "parent",
// "created", "when", "done", "retryCount".
// The "id" value may be a single id or a slice of ids with
// any-of semantics. "name" and "queue" values are event and
// queue names.
//
// When a Criteria names neither "id" nor "when", Find implicitly
// restricts results to items that still have a "when" timestamp,
// so already claimed items are only returned when asked for by id.
type Criteria map[string]any

// Has returns if the field is part of the criteria.
func (c Criteria) Has(field string) bool {
	_, ok := c[field]
	return ok
}
