// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the nexus API server.

Nexus pairs a poll engine (registered users, sequential polls, one response
per participant, author-only close) with a profile aggregator that deploys
the engine and keeps a registry of unique usernames.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	CALLER_TOKEN_SALT=... DATABASE_URL=nexus.db go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -caller-salt ...

# Configuration

Required settings:

  - CALLER_TOKEN_SALT (-caller-salt): Secret for caller token HMAC
  - DATABASE_URL (-d): Connection string, unless DATABASE_TYPE is memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite, postgres or memory (default: sqlite)
  - MIN_REWARD (-min-reward): Smallest accepted poll reward (default: 0)
  - REJECT_CLOSED_RESPONSES (-reject-closed): Refuse responses to closed polls
  - ENV_FILE: dotenv file loaded before the environment is read (default: .env)

# Architecture

  - engine: Poll engine (users, polls, responses)
  - aggregator: Profile registry holding the poll engine
  - host: Deterministic module instantiation
  - deploy: Wires engine and aggregator onto a host
  - store: Transactional registries (memory, sqlstore)
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, caller resolution, JSON helpers
  - models: Domain and request/response types
  - auth: Addresses and caller tokens
  - db: Connection and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
