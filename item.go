package postbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/domonda/go-types/notnull"
	"github.com/domonda/go-types/nullable"
	"github.com/domonda/go-types/uu"
)

// Item is a single unit of work produced by
// publishing an event into a queue.
type Item struct {
	ID int64 `json:"id"`

	Event string `json:"event"`
	Queue string `json:"queue"`

	Tid     string       `json:"tid"` // Opaque correlation id for related items
	Payload notnull.JSON `json:"payload"`
	Parent  *int64       `json:"parent,omitempty"` // Optional reference to a causing item

	Created time.Time `json:"created"`

	When nullable.Time `json:"when"` // Time from which the item can be claimed, or NULL when parked or claimed
	Done nullable.Time `json:"done"` // Time when the item was claimed, or NULL when unclaimed

	RetryCount int `json:"retryCount"` // Caller maintained, never incremented by this package
}

// IsPending returns if the item is due or waiting to be claimed.
// Valid to call on a nil receiver.
func (i *Item) IsPending() bool {
	if i == nil {
		return false
	}
	return i.When.IsNotNull() && i.Done.IsNull()
}

// IsClaimed returns if the item has been claimed by a consumer.
// Valid to call on a nil receiver.
func (i *Item) IsClaimed() bool {
	if i == nil {
		return false
	}
	return i.Done.IsNotNull()
}

// String implements the fmt.Stringer interface.
// Valid to call on a nil receiver.
func (i *Item) String() string {
	if i == nil {
		return "nil Item"
	}
	return fmt.Sprintf("Item %d, event %s, queue %s, tid '%s', created at %s", i.ID, i.Event, i.Queue, i.Tid, i.Created)
}

// NewItemWithTid creates an Item but does not publish it.
// The passed payload will be marshalled to JSON or directly interpreted as JSON if possible.
// If when is not null then the item becomes claimable at that time,
// a null when parks the item until it is rescheduled externally.
func NewItemWithTid(event, queue, tid string, payload any, when nullable.Time) (*Item, error) {
	if event == "" {
		return nil, errors.New("empty event name")
	}
	if queue == "" {
		return nil, errors.New("empty queue name")
	}
	if payload == nil {
		return nil, errors.New("nil item payload")
	}

	var (
		payloadJSON notnull.JSON
		err         error
	)
	switch x := payload.(type) {
	case notnull.JSON:
		payloadJSON = x
		if !payloadJSON.Valid() {
			return nil, fmt.Errorf("item payload is not valid JSON: %#v", string(x))
		}

	case nullable.JSON:
		payloadJSON = notnull.JSON(x)
		if !payloadJSON.Valid() {
			return nil, fmt.Errorf("item payload is not valid JSON: %#v", string(x))
		}

	case json.RawMessage:
		payloadJSON = notnull.JSON(x)
		if !payloadJSON.Valid() {
			return nil, fmt.Errorf("item payload is not valid JSON: %#v", string(x))
		}

	case []byte:
		payloadJSON = notnull.JSON(x)
		if !payloadJSON.Valid() {
			return nil, fmt.Errorf("item payload is not valid JSON: %#v", string(x))
		}

	case string:
		payloadJSON = notnull.JSON(x)
		if !payloadJSON.Valid() {
			return nil, fmt.Errorf("item payload is not valid JSON: %#v", x)
		}

	case json.Marshaler:
		payloadJSON, err = x.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("item payload is not valid JSON: %#v, error: %w", x, err)
		}

	default:
		payloadJSON, err = notnull.MarshalJSON(x)
		if err != nil {
			return nil, fmt.Errorf("item payload is not valid JSON: %#v, error: %w", x, err)
		}
	}

	item := &Item{
		Event:   event,
		Queue:   queue,
		Tid:     tid,
		Payload: payloadJSON,
		Created: time.Now(),
		When:    when,
	}

	return item, nil
}

// NewItem creates an Item with a random v4 UUID as Tid
// but does not publish it.
// The passed payload will be marshalled to JSON or directly interpreted as JSON if possible.
// If when is not null then the item becomes claimable at that time.
func NewItem(event, queue string, payload any, when nullable.Time) (*Item, error) {
	return NewItemWithTid(event, queue, uu.IDv4().String(), payload, when)
}

func Publish(ctx context.Context, items ...*Item) ([]int64, error) {
	return storeFrom(ctx).Publish(ctx, items...)
}

func FetchNext(ctx context.Context, queue string) (*Item, error) {
	return storeFrom(ctx).FetchNext(ctx, queue)
}

func GetItem(ctx context.Context, id int64) (*Item, error) {
	return storeFrom(ctx).GetItem(ctx, id)
}

func Find(ctx context.Context, criteria Criteria) ([]*Item, error) {
	return storeFrom(ctx).Find(ctx, criteria)
}

func Remove(ctx context.Context, criteria Criteria) (int64, error) {
	return storeFrom(ctx).Remove(ctx, criteria)
}
