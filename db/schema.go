// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
	TypeMemory   = "memory"
)

// Open connects to the configured database and verifies the connection.
func Open(databaseType, databaseURL string) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	var driver string
	switch databaseType {
	case TypePostgres:
		driver = "postgres"
	case TypeSQLite:
		driver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported database type %q", databaseType)
	}

	conn, err := sql.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", databaseType, err)
	}
	if databaseType == TypeSQLite {
		// SQLite allows a single writer; queue transactions in the pool instead.
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", databaseType, err)
	}
	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Poll engine users
CREATE TABLE IF NOT EXISTS registered_user (
    instance TEXT NOT NULL,
    address TEXT NOT NULL,
    username TEXT NOT NULL,
    PRIMARY KEY (instance, address)
);

CREATE TABLE IF NOT EXISTS user_descriptor (
    instance TEXT NOT NULL,
    address TEXT NOT NULL,
    ordinal INTEGER NOT NULL,
    descriptor TEXT NOT NULL,
    PRIMARY KEY (instance, address, ordinal),
    FOREIGN KEY (instance, address) REFERENCES registered_user(instance, address) ON DELETE CASCADE
);

-- Polls
CREATE TABLE IF NOT EXISTS poll (
    instance TEXT NOT NULL,
    id BIGINT NOT NULL,
    author TEXT NOT NULL,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    reward BIGINT NOT NULL,
    is_open BOOLEAN NOT NULL DEFAULT TRUE,
    response_count INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (instance, id)
);

CREATE INDEX IF NOT EXISTS idx_poll_author ON poll(instance, author);

-- Responses (index-aligned with participants)
CREATE TABLE IF NOT EXISTS poll_response (
    instance TEXT NOT NULL,
    poll_id BIGINT NOT NULL,
    ordinal INTEGER NOT NULL,
    participant TEXT NOT NULL,
    response TEXT NOT NULL,
    PRIMARY KEY (instance, poll_id, ordinal),
    UNIQUE (instance, poll_id, participant),
    FOREIGN KEY (instance, poll_id) REFERENCES poll(instance, id) ON DELETE CASCADE
);

-- Aggregator profiles
CREATE TABLE IF NOT EXISTS profile (
    instance TEXT NOT NULL,
    username TEXT NOT NULL,
    address TEXT NOT NULL,
    PRIMARY KEY (instance, username)
);

CREATE INDEX IF NOT EXISTS idx_profile_address ON profile(instance, address);

CREATE TABLE IF NOT EXISTS profile_entry (
    instance TEXT NOT NULL,
    username TEXT NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('experience', 'skill')),
    ordinal INTEGER NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (instance, username, kind, ordinal),
    FOREIGN KEY (instance, username) REFERENCES profile(instance, username) ON DELETE CASCADE
);

-- Sequences
CREATE TABLE IF NOT EXISTS counter (
    instance TEXT NOT NULL,
    name TEXT NOT NULL,
    value BIGINT NOT NULL,
    PRIMARY KEY (instance, name)
);
`
