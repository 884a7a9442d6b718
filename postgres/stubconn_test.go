package postgres

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/domonda/go-sqldb"
	"github.com/domonda/go-sqldb/db"
	"github.com/domonda/go-types/nullable"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postbus/go-postbus"
)

// stubConn fakes query results so that store-level failure paths
// can be tested without a database. Methods that are not overridden
// panic via the embedded nil interface.
type stubConn struct {
	sqldb.Connection
	queryRow  func(query string, args ...any) sqldb.RowScanner
	queryRows func(query string, args ...any) sqldb.RowsScanner
}

func (c *stubConn) Context() context.Context { return context.Background() }

func (c *stubConn) WithContext(context.Context) sqldb.Connection { return c }

func (c *stubConn) QueryRow(query string, args ...any) sqldb.RowScanner {
	return c.queryRow(query, args...)
}

func (c *stubConn) QueryRows(query string, args ...any) sqldb.RowsScanner {
	return c.queryRows(query, args...)
}

type stubRow struct {
	sqldb.RowScanner
	scan func(dest ...any) error
}

func (r stubRow) Scan(dest ...any) error { return r.scan(dest...) }

type stubRows struct {
	sqldb.RowsScanner
	scanSlice func(dest any) error
}

func (r stubRows) ScanSlice(dest any) error { return r.scanSlice(dest) }

func setStubConn(t *testing.T, conn sqldb.Connection) {
	t.Helper()
	prev := db.Conn(context.Background())
	db.SetConn(conn)
	t.Cleanup(func() { db.SetConn(prev) })
}

func TestPublishIncompleteInsert(t *testing.T) {
	ctx := context.Background()

	// given: a store whose insert returns one id less than items submitted
	store := newTestStore()
	store.resolver.memoize(kindEvent, "invoice.created", 1)
	store.resolver.memoize(kindQueue, "billing", 2)
	setStubConn(t, &stubConn{
		queryRows: func(query string, args ...any) sqldb.RowsScanner {
			return stubRows{scanSlice: func(dest any) error {
				*(dest.(*[]int64)) = []int64{101, 102}
				return nil
			}}
		},
	})

	var items []*postbus.Item
	for i := 0; i < 3; i++ {
		item, err := postbus.NewItem("invoice.created", "billing", `{}`, nullable.TimeNow())
		require.NoError(t, err)
		items = append(items, item)
	}

	// when
	ids, err := store.Publish(ctx, items...)

	// then: the whole batch fails, no partial id list is returned
	require.ErrorIs(t, err, postbus.ErrIncompleteInsert)
	assert.Nil(t, ids)
}

func TestResolveOrCreateIDInsertRace(t *testing.T) {
	ctx := context.Background()

	t.Run("lost insert race retries the lookup once", func(t *testing.T) {
		// given: the name does not exist on first lookup, the insert
		// hits the unique constraint because a concurrent creator won,
		// and the retried lookup finds the winner's row
		r := newResolver()
		selectCalls := 0
		setStubConn(t, &stubConn{
			queryRow: func(query string, args ...any) sqldb.RowScanner {
				if strings.HasPrefix(strings.TrimSpace(query), "insert") {
					return stubRow{scan: func(...any) error {
						return &pq.Error{Code: pgUniqueViolation}
					}}
				}
				selectCalls++
				if selectCalls == 1 {
					return stubRow{scan: func(...any) error { return sql.ErrNoRows }}
				}
				return stubRow{scan: func(dest ...any) error {
					*(dest[0].(*int64)) = 7
					return nil
				}}
			},
		})

		// when
		id, err := r.resolveOrCreateID(ctx, kindEvent, "invoice.created")

		// then: the violation is not surfaced
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		assert.Equal(t, 2, selectCalls)

		cached, ok := r.cachedID(kindEvent, "invoice.created")
		assert.True(t, ok)
		assert.Equal(t, int64(7), cached)
	})

	t.Run("retried lookup miss propagates", func(t *testing.T) {
		// given: the insert loses the race but the retried
		// lookup finds nothing either
		r := newResolver()
		setStubConn(t, &stubConn{
			queryRow: func(query string, args ...any) sqldb.RowScanner {
				if strings.HasPrefix(strings.TrimSpace(query), "insert") {
					return stubRow{scan: func(...any) error {
						return &pq.Error{Code: pgUniqueViolation}
					}}
				}
				return stubRow{scan: func(...any) error { return sql.ErrNoRows }}
			},
		})

		// when
		_, err := r.resolveOrCreateID(ctx, kindEvent, "invoice.created")

		// then
		require.ErrorIs(t, err, postbus.ErrNotFound)
	})

	t.Run("other insert errors are not retried", func(t *testing.T) {
		// given: the insert fails with something other
		// than a unique violation
		r := newResolver()
		selectCalls := 0
		setStubConn(t, &stubConn{
			queryRow: func(query string, args ...any) sqldb.RowScanner {
				if strings.HasPrefix(strings.TrimSpace(query), "insert") {
					return stubRow{scan: func(...any) error {
						return &pq.Error{Code: "53300", Message: "too many connections"}
					}}
				}
				selectCalls++
				return stubRow{scan: func(...any) error { return sql.ErrNoRows }}
			},
		})

		// when
		_, err := r.resolveOrCreateID(ctx, kindEvent, "invoice.created")

		// then
		require.Error(t, err)
		assert.NotErrorIs(t, err, postbus.ErrNotFound)
		assert.Equal(t, 1, selectCalls, "only the initial lookup ran")
	})
}
