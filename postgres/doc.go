/*
Package postgres provides the PostgreSQL implementation of the postbus store.

# Overview

The postgres package implements the postbus.Store interface using
PostgreSQL as the backend. Events, queues, subscriptions, and work items
are persisted in the postbus schema, and claiming the next ready item of
a queue is a single atomic statement so that competing consumers never
receive the same item.

# Initialization

Connect creates the target database if it is missing, bootstraps the
schema, and installs the connection:

	store, err := postgres.Connect(ctx, &postgres.Config{
		Host:     "localhost",
		Port:     5432,
		Database: "postbus",
		User:     "postgres",
	})
	if err != nil {
		...
	}
	postbus.SetDefaultStore(store)
	defer store.Close()

# Database Schema

Four tables in the postbus schema:
  - postbus.event: named event categories
  - postbus.queue: named consumer destinations
  - postbus.subscription: (event_id, queue_id) bindings
  - postbus.item: work items with payload and claim state

All DDL is idempotent and executed on Connect.

# Name Resolution

Event and queue names are stored once and referenced by id.
The store memoizes name to id bindings per instance. Bindings are
append-only and never reassigned, so stale cache reads are safe,
but a cache miss always falls through to the database because a
concurrent process may have created the name.

# Connection Management

Connect installs the connection process-globally via
github.com/domonda/go-sqldb/db, following that package's single
connection discipline. Create one store per process.
*/
package postgres
