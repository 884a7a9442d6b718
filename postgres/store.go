package postgres

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/domonda/go-errs"
	"github.com/domonda/go-sqldb"
	"github.com/domonda/go-sqldb/db"
	"github.com/domonda/go-types/notnull"
	"github.com/domonda/go-types/nullable"

	"github.com/postbus/go-postbus"
)

// Store implements postbus.Store backed by PostgreSQL.
// Use Connect to create a ready instance.
type Store struct {
	resolver *resolver
	closed   atomic.Bool
}

var _ postbus.Store = (*Store)(nil)

const itemColumns = `id, event_id, queue_id, tid, payload, parent, created, "when", done, retry_count`

// itemRow is the relational shape of an item, event and queue
// are stored as ids and resolved back to names on output.
type itemRow struct {
	ID         int64         `db:"id"`
	EventID    int64         `db:"event_id"`
	QueueID    int64         `db:"queue_id"`
	Tid        string        `db:"tid"`
	Payload    notnull.JSON  `db:"payload"`
	Parent     *int64        `db:"parent"`
	Created    time.Time     `db:"created"`
	When       nullable.Time `db:"when"`
	Done       nullable.Time `db:"done"`
	RetryCount int           `db:"retry_count"`
}

func (s *Store) item(ctx context.Context, row *itemRow) (*postbus.Item, error) {
	event, err := s.resolver.resolveName(ctx, kindEvent, row.EventID)
	if err != nil {
		return nil, err
	}
	queue, err := s.resolver.resolveName(ctx, kindQueue, row.QueueID)
	if err != nil {
		return nil, err
	}
	return &postbus.Item{
		ID:         row.ID,
		Event:      event,
		Queue:      queue,
		Tid:        row.Tid,
		Payload:    row.Payload,
		Parent:     row.Parent,
		Created:    row.Created,
		When:       row.When,
		Done:       row.Done,
		RetryCount: row.RetryCount,
	}, nil
}

func (s *Store) Subscribe(ctx context.Context, event, queue string) (err error) {
	defer errs.WrapWithFuncParams(&err, ctx, event, queue)

	if s.closed.Load() {
		return postbus.ErrClosed
	}

	eventID, err := s.resolver.resolveOrCreateID(ctx, kindEvent, event)
	if err != nil {
		return err
	}
	queueID, err := s.resolver.resolveOrCreateID(ctx, kindQueue, queue)
	if err != nil {
		return err
	}

	err = db.Exec(ctx,
		/*sql*/ `
			insert into postbus.subscription (event_id, queue_id)
			values ($1, $2)
		`,
		eventID, // $1
		queueID, // $2
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errs.Errorf("queue %q for event %q: %w", queue, event, postbus.ErrAlreadySubscribed)
		}
		return err
	}
	return nil
}

func (s *Store) Unsubscribe(ctx context.Context, event, queue string) (err error) {
	defer errs.WrapWithFuncParams(&err, ctx, event, queue)

	if s.closed.Load() {
		return postbus.ErrClosed
	}

	eventID, err := s.resolver.resolveID(ctx, kindEvent, event)
	if err != nil {
		return err
	}
	queueID, err := s.resolver.resolveID(ctx, kindQueue, queue)
	if err != nil {
		return err
	}

	// Deleting a non-existent pair is a no-op success
	return db.Exec(ctx,
		/*sql*/ `
			delete from postbus.subscription
			where event_id = $1
				and queue_id = $2
		`,
		eventID, // $1
		queueID, // $2
	)
}

func (s *Store) Subscriptions(ctx context.Context, event string) (queues []string, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, event)

	if s.closed.Load() {
		return nil, postbus.ErrClosed
	}

	eventID, err := s.resolver.resolveID(ctx, kindEvent, event)
	if err != nil {
		// An unknown event means nobody ever subscribed to it
		if errors.Is(err, postbus.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	err = db.QueryRows(ctx,
		/*sql*/ `
			select q.name
			from postbus.subscription as s
				inner join postbus.queue as q on q.id = s.queue_id
			where s.event_id = $1
		`,
		eventID, // $1
	).ScanSlice(&queues)
	if err != nil {
		return nil, err
	}
	return queues, nil
}

func (s *Store) Publish(ctx context.Context, items ...*postbus.Item) (ids []int64, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, items)

	if s.closed.Load() {
		return nil, postbus.ErrClosed
	}
	if len(items) == 0 {
		return nil, nil
	}

	insert := sq.Insert("postbus.item").
		Columns("event_id", "queue_id", "tid", "payload", "parent", "created", `"when"`, "retry_count").
		Suffix(`returning id`).
		PlaceholderFormat(sq.Dollar)

	for _, item := range items {
		if item == nil {
			return nil, errs.New("<nil> postbus.Item")
		}
		eventID, err := s.resolver.resolveOrCreateID(ctx, kindEvent, item.Event)
		if err != nil {
			return nil, err
		}
		queueID, err := s.resolver.resolveOrCreateID(ctx, kindQueue, item.Queue)
		if err != nil {
			return nil, err
		}
		created := item.Created
		if created.IsZero() {
			created = time.Now()
		}
		insert = insert.Values(eventID, queueID, item.Tid, item.Payload, item.Parent, created, item.When, item.RetryCount)
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return nil, err
	}
	err = db.QueryRows(ctx, query, args...).ScanSlice(&ids)
	if err != nil {
		return nil, err
	}
	// The returned ids are in VALUES order, so a matching count
	// means every submitted item was inserted
	if len(ids) != len(items) {
		return nil, errs.Errorf("inserted %d of %d items: %w", len(ids), len(items), postbus.ErrIncompleteInsert)
	}
	return ids, nil
}

func (s *Store) FetchNext(ctx context.Context, queue string) (item *postbus.Item, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, queue)

	if s.closed.Load() {
		return nil, postbus.ErrClosed
	}

	queueID, err := s.resolver.resolveID(ctx, kindQueue, queue)
	if err != nil {
		return nil, err
	}

	// Use `skip locked` here because multiple consumers compete for
	// items and any unclaimed row will do. If a row is already locked
	// by another consumer, skipping it and grabbing the next one is
	// correct. Selecting and updating the candidate in one statement
	// makes the claim atomic, so no item is ever returned twice.
	//
	// Candidates are claimed newest-first (created desc), which is
	// the historical claim order of this store, not FIFO.
	var row itemRow
	err = db.QueryRow(ctx,
		/*sql*/ `
			update postbus.item
			set "when" = null, done = now()
			where id = (
				select id
				from postbus.item
				where queue_id = $1
					and "when" is not null
					and "when" <= now()
				order by created desc, id desc
				limit 1
				for update skip locked
			)
			returning `+itemColumns,
		queueID, // $1
	).ScanStruct(&row)
	if err != nil {
		return nil, sqldb.ReplaceErrNoRows(err, nil)
	}
	return s.item(ctx, &row)
}

func (s *Store) GetItem(ctx context.Context, id int64) (item *postbus.Item, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, id)

	if s.closed.Load() {
		return nil, postbus.ErrClosed
	}

	var row itemRow
	err = db.QueryRow(ctx,
		/*sql*/ `select `+itemColumns+` from postbus.item where id = $1`, id,
	).ScanStruct(&row)
	if err != nil {
		if sqldb.ReplaceErrNoRows(err, nil) == nil {
			return nil, errs.Errorf("item %d: %w", id, postbus.ErrNotFound)
		}
		return nil, err
	}
	return s.item(ctx, &row)
}

func (s *Store) Find(ctx context.Context, criteria postbus.Criteria) (items []*postbus.Item, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, criteria)

	if s.closed.Load() {
		return nil, postbus.ErrClosed
	}

	pred, err := s.wherePredicate(ctx, criteria, true)
	if err != nil {
		return nil, err
	}
	builder := sq.Select(itemColumns).
		From("postbus.item").
		OrderBy("id").
		PlaceholderFormat(sq.Dollar)
	if pred != nil {
		builder = builder.Where(pred)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []itemRow
	err = db.QueryRows(ctx, query, args...).ScanStructSlice(&rows)
	if err != nil {
		return nil, err
	}
	items = make([]*postbus.Item, len(rows))
	for i := range rows {
		items[i], err = s.item(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Store) Remove(ctx context.Context, criteria postbus.Criteria) (count int64, err error) {
	defer errs.WrapWithFuncParams(&err, ctx, criteria)

	if s.closed.Load() {
		return 0, postbus.ErrClosed
	}

	pred, err := s.wherePredicate(ctx, criteria, false)
	if err != nil {
		return 0, err
	}
	builder := sq.Delete("postbus.item").
		Suffix(`returning id`).
		PlaceholderFormat(sq.Dollar)
	if pred != nil {
		builder = builder.Where(pred)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}

	count, err = db.QueryValue[int64](ctx,
		/*sql*/ `with removed as (`+query+`) select count(*) from removed`,
		args...,
	)
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (s *Store) GetStatus(ctx context.Context) (status *postbus.Status, err error) {
	defer errs.WrapWithFuncParams(&err, ctx)

	if s.closed.Load() {
		return nil, postbus.ErrClosed
	}

	status = new(postbus.Status)
	err = db.QueryRow(ctx,
		/*sql*/ `
			select
			(select count(*) from postbus.event)        as num_events,
			(select count(*) from postbus.queue)        as num_queues,
			(select count(*) from postbus.subscription) as num_subscriptions,
			(select count(*) from postbus.item)         as num_items,
			(select count(*) from postbus.item where "when" is not null) as num_pending_items,
			(select count(*) from postbus.item where done is not null)   as num_claimed_items
		`,
	).Scan(
		&status.NumEvents,
		&status.NumQueues,
		&status.NumSubscriptions,
		&status.NumItems,
		&status.NumPendingItems,
		&status.NumClaimedItems,
	)
	if err != nil {
		return nil, err
	}
	return status, nil
}

// Close marks the store as closed and closes the installed
// connection. It is idempotent and safe to call on a store
// that never connected successfully.
func (s *Store) Close() (err error) {
	defer errs.WrapWithFuncParams(&err)

	if s.closed.Swap(true) {
		return nil
	}

	log.Info("Closing store").Log()

	return db.Conn(context.Background()).Close()
}
