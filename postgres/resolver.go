package postgres

import (
	"context"
	"errors"
	"sync"

	"github.com/domonda/go-errs"
	"github.com/domonda/go-sqldb"
	"github.com/domonda/go-sqldb/db"

	"github.com/postbus/go-postbus"
)

// kind is the category of a named identifier.
type kind string

const (
	kindEvent kind = "event"
	kindQueue kind = "queue"
)

func (k kind) table() string {
	return "postbus." + string(k)
}

// resolver translates between event/queue names and their ids,
// memoizing both directions per store instance.
//
// Name to id bindings are append-only and never reassigned, so a
// stale cache entry is still valid. A cache miss is never proof of
// non-existence because another process may have created the name,
// so misses always fall through to the database.
type resolver struct {
	mtx   sync.RWMutex
	ids   map[kind]map[string]int64
	names map[kind]map[int64]string
}

func newResolver() *resolver {
	return &resolver{
		ids:   map[kind]map[string]int64{kindEvent: {}, kindQueue: {}},
		names: map[kind]map[int64]string{kindEvent: {}, kindQueue: {}},
	}
}

// memoize caches the binding in both directions.
func (r *resolver) memoize(k kind, name string, id int64) {
	r.mtx.Lock()
	r.ids[k][name] = id
	r.names[k][id] = name
	r.mtx.Unlock()
}

func (r *resolver) cachedID(k kind, name string) (id int64, ok bool) {
	r.mtx.RLock()
	id, ok = r.ids[k][name]
	r.mtx.RUnlock()
	return id, ok
}

func (r *resolver) cachedName(k kind, id int64) (name string, ok bool) {
	r.mtx.RLock()
	name, ok = r.names[k][id]
	r.mtx.RUnlock()
	return name, ok
}

// resolveID returns the id of the name,
// or postbus.ErrNotFound if the name does not exist.
func (r *resolver) resolveID(ctx context.Context, k kind, name string) (id int64, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, k, name)

	if id, ok := r.cachedID(k, name); ok {
		return id, nil
	}
	id, err = db.QueryValue[int64](ctx,
		`select id from `+k.table()+` where name = $1`, name,
	)
	if err != nil {
		if sqldb.ReplaceErrNoRows(err, nil) == nil {
			return 0, errs.Errorf("%s %q: %w", k, name, postbus.ErrNotFound)
		}
		return 0, err
	}
	r.memoize(k, name, id)
	return id, nil
}

// resolveOrCreateID returns the id of the name,
// inserting a new row if the name does not exist yet.
func (r *resolver) resolveOrCreateID(ctx context.Context, k kind, name string) (id int64, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, k, name)

	id, err = r.resolveID(ctx, k, name)
	if err == nil || !errors.Is(err, postbus.ErrNotFound) {
		return id, err
	}
	id, err = db.QueryValue[int64](ctx,
		`insert into `+k.table()+` (name) values ($1) returning id`, name,
	)
	if err != nil {
		// Lost the insert race against a concurrent creator,
		// the row exists now so retry the lookup once
		if isUniqueViolation(err) {
			return r.resolveID(ctx, k, name)
		}
		return 0, err
	}
	r.memoize(k, name, id)
	return id, nil
}

// resolveName returns the name of the id,
// or postbus.ErrNotFound if the id does not exist.
func (r *resolver) resolveName(ctx context.Context, k kind, id int64) (name string, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, k, id)

	if name, ok := r.cachedName(k, id); ok {
		return name, nil
	}
	name, err = db.QueryValue[string](ctx,
		`select name from `+k.table()+` where id = $1`, id,
	)
	if err != nil {
		if sqldb.ReplaceErrNoRows(err, nil) == nil {
			return "", errs.Errorf("%s %d: %w", k, id, postbus.ErrNotFound)
		}
		return "", err
	}
	r.memoize(k, name, id)
	return name, nil
}
