package postgres

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/domonda/go-errs"

	"github.com/postbus/go-postbus"
)

// criteriaColumns maps criteria field names to columns of postbus.item.
// Column names can't be bound parameters so only whitelisted
// fields translate, anything else is an error.
var criteriaColumns = map[string]string{
	"id":         "id",
	"tid":        "tid",
	"parent":     "parent",
	"created":    "created",
	"when":       `"when"`,
	"done":       "done",
	"retryCount": "retry_count",
}

// wherePredicate translates the criteria into a parameterized SQL
// predicate. All values are bound parameters, slice values get
// any-of semantics via IN. The "name" and "queue" fields are
// resolved to event_id and queue_id through the resolver.
//
// With pendingOnly, criteria that name neither "id" nor "when" are
// restricted to items that still have a "when" timestamp, so claimed
// items are only found when asked for by id.
func (s *Store) wherePredicate(ctx context.Context, criteria postbus.Criteria, pendingOnly bool) (sq.Sqlizer, error) {
	eq := sq.Eq{}
	for field, value := range criteria {
		switch field {
		case "name":
			name, ok := value.(string)
			if !ok {
				return nil, errs.Errorf("criteria field %q must be a string, got %#v", field, value)
			}
			id, err := s.resolver.resolveID(ctx, kindEvent, name)
			if err != nil {
				return nil, err
			}
			eq["event_id"] = id

		case "queue":
			name, ok := value.(string)
			if !ok {
				return nil, errs.Errorf("criteria field %q must be a string, got %#v", field, value)
			}
			id, err := s.resolver.resolveID(ctx, kindQueue, name)
			if err != nil {
				return nil, err
			}
			eq["queue_id"] = id

		default:
			column, ok := criteriaColumns[field]
			if !ok {
				return nil, errs.Errorf("unknown criteria field %q", field)
			}
			eq[column] = value
		}
	}

	var pred sq.And
	if len(eq) > 0 {
		pred = append(pred, eq)
	}
	if pendingOnly && !criteria.Has("id") && !criteria.Has("when") {
		pred = append(pred, sq.Gt{`"when"`: time.Unix(0, 0)})
	}
	if len(pred) == 0 {
		return nil, nil
	}
	return pred, nil
}
