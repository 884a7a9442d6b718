package postbus

import (
	"context"
)

// Store is the persistence interface of the pub-sub system.
//
// Events and queues are created lazily on first reference.
// The store holds no authoritative in-process state, so any
// number of processes may share the same backing database.
type Store interface {
	// Subscribe binds the queue to the event so that publishing
	// the event enqueues items to the queue.
	// Returns ErrAlreadySubscribed if the pair already exists.
	Subscribe(ctx context.Context, event, queue string) error

	// Unsubscribe removes the event to queue binding.
	// Removing a non-existent binding is a no-op success,
	// but unknown event or queue names return ErrNotFound.
	Unsubscribe(ctx context.Context, event, queue string) error

	// Subscriptions returns the names of the queues bound to the
	// event, in no significant order. An unknown event name yields
	// an empty result, not an error.
	Subscriptions(ctx context.Context, event string) ([]string, error)

	// Publish inserts all items in one batch and returns their
	// generated ids in submission order. The batch is all-or-nothing:
	// a row-count mismatch returns ErrIncompleteInsert.
	Publish(ctx context.Context, items ...*Item) ([]int64, error)

	// FetchNext atomically claims the next ready item of the queue,
	// or returns nil, nil when no item is ready.
	// Among ready items the most recently created one is claimed first.
	FetchNext(ctx context.Context, queue string) (*Item, error)

	// GetItem returns the item with the passed id regardless
	// of its claim state, or ErrNotFound.
	GetItem(ctx context.Context, id int64) (*Item, error)

	// Find returns the items matching the criteria ordered by id.
	Find(ctx context.Context, criteria Criteria) ([]*Item, error)

	// Remove deletes the items matching the criteria
	// and returns the number of deleted items.
	Remove(ctx context.Context, criteria Criteria) (int64, error)

	GetStatus(ctx context.Context) (*Status, error)
	Close() error
}

var defaultStore Store = StoreWithError(ErrNoStore)

// SetDefaultStore sets the Store used by the
// package-level functions.
func SetDefaultStore(store Store) {
	if store == nil {
		panic("<nil> postbus.Store")
	}
	defaultStore = store
}

// DefaultStore returns the Store used by the
// package-level functions.
func DefaultStore() Store {
	return defaultStore
}

func Subscribe(ctx context.Context, event, queue string) error {
	return storeFrom(ctx).Subscribe(ctx, event, queue)
}

func Unsubscribe(ctx context.Context, event, queue string) error {
	return storeFrom(ctx).Unsubscribe(ctx, event, queue)
}

func Subscriptions(ctx context.Context, event string) ([]string, error) {
	return storeFrom(ctx).Subscriptions(ctx, event)
}

func Close() error {
	return defaultStore.Close()
}
