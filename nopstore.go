package postbus

import (
	"context"
)

var _ Store = NopStore{}

// NopStore is a Store implementation
// that does nothing and returns nil for
// all its method result values.
type NopStore struct{}

func (NopStore) Subscribe(ctx context.Context, event, queue string) error          { return nil }
func (NopStore) Unsubscribe(ctx context.Context, event, queue string) error        { return nil }
func (NopStore) Subscriptions(ctx context.Context, event string) ([]string, error) { return nil, nil }
func (NopStore) Publish(ctx context.Context, items ...*Item) ([]int64, error)      { return nil, nil }
func (NopStore) FetchNext(ctx context.Context, queue string) (*Item, error)        { return nil, nil }
func (NopStore) GetItem(ctx context.Context, id int64) (*Item, error)              { return nil, nil }
func (NopStore) Find(ctx context.Context, criteria Criteria) ([]*Item, error)      { return nil, nil }
func (NopStore) Remove(ctx context.Context, criteria Criteria) (int64, error)      { return 0, nil }
func (NopStore) GetStatus(context.Context) (*Status, error)                        { return nil, nil }
func (NopStore) Close() error                                                      { return nil }
