package postbus

import (
	"context"
)

var storeKey int

// ContextWithStore returns a context that makes the package-level
// functions use the passed Store instead of the default one.
func ContextWithStore(ctx context.Context, store Store) context.Context {
	return context.WithValue(ctx, &storeKey, store)
}

// StoreFromContext returns the Store added to the context
// with ContextWithStore, or nil.
func StoreFromContext(ctx context.Context) Store {
	store, _ := ctx.Value(&storeKey).(Store)
	return store
}

func storeFrom(ctx context.Context) Store {
	if store := StoreFromContext(ctx); store != nil {
		return store
	}
	return defaultStore
}
