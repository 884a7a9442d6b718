package postbus

import (
	"context"

	"github.com/domonda/go-errs"
)

const (
	// ErrNotFound means a referenced name or id has no
	// corresponding row in the store.
	ErrNotFound errs.Sentinel = "not found"

	// ErrAlreadySubscribed means the (event, queue) pair
	// already exists.
	ErrAlreadySubscribed errs.Sentinel = "already subscribed"

	// ErrIncompleteInsert means a batch publish returned fewer
	// ids than items were submitted. The whole batch must be
	// treated as failed, not partially applied.
	ErrIncompleteInsert errs.Sentinel = "incomplete insert"

	// ErrConnection means the store is unreachable or the
	// schema bootstrap failed.
	ErrConnection errs.Sentinel = "connection error"

	ErrClosed  errs.Sentinel = "store is closed"
	ErrNoStore errs.Sentinel = "no store configured"
)

var _ Store = errStore{}

type errStore struct {
	err error
}

// StoreWithError returns a Store that returns
// the passed error from all its methods.
func StoreWithError(err error) Store {
	return errStore{err}
}

func (e errStore) Subscribe(ctx context.Context, event, queue string) error   { return e.err }
func (e errStore) Unsubscribe(ctx context.Context, event, queue string) error { return e.err }
func (e errStore) Subscriptions(ctx context.Context, event string) ([]string, error) {
	return nil, e.err
}
func (e errStore) Publish(ctx context.Context, items ...*Item) ([]int64, error) { return nil, e.err }
func (e errStore) FetchNext(ctx context.Context, queue string) (*Item, error)   { return nil, e.err }
func (e errStore) GetItem(ctx context.Context, id int64) (*Item, error)         { return nil, e.err }
func (e errStore) Find(ctx context.Context, criteria Criteria) ([]*Item, error) { return nil, e.err }
func (e errStore) Remove(ctx context.Context, criteria Criteria) (int64, error) { return 0, e.err }
func (e errStore) GetStatus(context.Context) (*Status, error)                   { return nil, e.err }
func (e errStore) Close() error                                                 { return e.err }
