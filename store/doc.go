// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store defines the persistent key-value surface used by the poll
engine and the aggregator.

Each deployed instance gets its own Store, so registries never leak between
instances. All access happens inside a transaction:

	err := st.Update(ctx, func(tx store.Tx) error {
		id, err := tx.NextSequence(ctx, store.SeqPollID)
		...
	})

Returning an error from the callback discards every write made by it.

# Implementations

  - store/memory: maps guarded by a mutex, writes staged until commit
  - store/sqlstore: database/sql over PostgreSQL or SQLite

Key collisions surface as ErrAlreadyExists.
*/
package store
