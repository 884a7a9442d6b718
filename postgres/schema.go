package postgres

import (
	"context"

	"github.com/domonda/go-errs"
	"github.com/domonda/go-sqldb/db"
)

// schemaObjects is the idempotent DDL of the store,
// executed in order on Connect.
var schemaObjects = []string{
	/*sql*/ `
		create schema if not exists postbus
	`,
	/*sql*/ `
		create table if not exists postbus.event (
			id   bigserial primary key,
			name text not null unique
		)
	`,
	/*sql*/ `
		create table if not exists postbus.queue (
			id   bigserial primary key,
			name text not null unique
		)
	`,
	/*sql*/ `
		create table if not exists postbus.subscription (
			event_id bigint not null references postbus.event(id),
			queue_id bigint not null references postbus.queue(id),
			primary key (event_id, queue_id)
		)
	`,
	/*sql*/ `
		create table if not exists postbus.item (
			id          bigserial primary key,
			event_id    bigint not null references postbus.event(id),
			queue_id    bigint not null references postbus.queue(id),
			tid         text not null default '',
			payload     jsonb not null,
			parent      bigint references postbus.item(id),
			created     timestamptz not null default now(),
			"when"      timestamptz,
			done        timestamptz,
			retry_count integer not null default 0
		)
	`,
	// Claim candidates are selected per queue ordered by created desc,
	// only rows with a "when" timestamp are claimable
	/*sql*/ `
		create index if not exists item_pending_idx
			on postbus.item (queue_id, created desc)
			where "when" is not null
	`,
	/*sql*/ `
		create index if not exists item_done_idx
			on postbus.item (done)
			where done is not null
	`,
}

// bootstrapSchema creates the postbus schema, tables, and indexes
// if they don't exist yet.
func bootstrapSchema(ctx context.Context) (err error) {
	defer errs.WrapWithFuncParams(&err, ctx)

	return db.Transaction(ctx, func(ctx context.Context) error {
		for _, ddl := range schemaObjects {
			err := db.Exec(ctx, ddl)
			if err != nil {
				return err
			}
		}
		return nil
	})
}
