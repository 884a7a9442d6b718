/*
Package postbus persists the state of a pub-sub work queue in PostgreSQL.

# Overview

The postbus package maps a small fixed set of pub-sub operations onto
relational tables: subscribe queues to events, publish work items,
atomically claim the next ready item of a queue, and find or remove
items by criteria. Queue semantics like delivery guarantees, retries,
and scheduling live in the consuming system, not here.

# Basic Usage

Connect a store and install it as the default:

	import (
		"context"
		"github.com/postbus/go-postbus"
		"github.com/postbus/go-postbus/postgres"
	)

	func main() {
		ctx := context.Background()

		store, err := postgres.Connect(ctx, &postgres.Config{
			Host:     "localhost",
			Port:     5432,
			Database: "postbus",
			User:     "postgres",
		})
		if err != nil {
			panic(err)
		}
		postbus.SetDefaultStore(store)
		defer postbus.Close()

		// Bind a queue to an event
		postbus.Subscribe(ctx, "invoice.created", "billing")

		// Publish a work item
		item, _ := postbus.NewItem("invoice.created", "billing", payload, nullable.TimeNow())
		postbus.Publish(ctx, item)

		// Claim the next ready item
		item, _ = postbus.FetchNext(ctx, "billing")
	}

# Events, Queues, Subscriptions

Events and queues are named lazily: first reference creates them.
A subscription binds one event to one queue, meaning "when the event
fires, enqueue to the queue". A given pair exists at most once.

# Item Lifecycle

1. Published - the item is inserted with a "when" timestamp
2. Pending - "when" has passed, the item is ready to be claimed
3. Claimed - a consumer called FetchNext; "when" is cleared and "done" set

Claiming is the only transition performed by this package and it happens
in a single atomic statement, so concurrent consumers on the same queue
never receive the same item.

# Scheduled Items

Items with a "when" timestamp in the future are not claimable until that
time is reached. Items with a null "when" are parked and never claimed.

# Context Support

All operations take a context.Context. The package-level functions use
the default store, which can be overridden per context using
ContextWithStore.

# Error Handling

All errors are wrapped using github.com/domonda/go-errs for stack traces.
The error taxonomy is defined in errors.go as errs.Sentinel constants.
*/
package postbus
