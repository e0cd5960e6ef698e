// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates its schema.

# Connecting

Open selects the driver from the database type:

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "file:nexus.db")

PostgreSQL uses github.com/lib/pq and SQLite uses modernc.org/sqlite. SQLite
connections are limited to one open connection so transactions queue instead
of failing with SQLITE_BUSY.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

Every table is keyed by the owning instance address, so several deployed
instances share one database without seeing each other's rows:

  - registered_user: Poll engine users, one per address
  - user_descriptor: Ordered descriptors per user
  - poll: Poll metadata, reward, and open flag
  - poll_response: One response per participant per poll
  - profile: Aggregator profiles, one per username
  - profile_entry: Ordered experience and skill entries
  - counter: Named sequences (poll ids)

# Relationships

	registered_user 1──* user_descriptor
	poll 1──* poll_response
	profile 1──* profile_entry

# Indexes

Lookup indexes on:

  - poll.(instance, author)
  - profile.(instance, address)
*/
package db
