// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3318)
  - DatabaseURL: Connection string (required for sqlite and postgres)
  - DatabaseType: sqlite, postgres or memory (default: sqlite)
  - CallerTokenSalt: Secret for caller token HMAC (required)
  - MinReward: Smallest poll reward accepted (default: 0)
  - RejectClosedResponses: Refuse responses once a poll is closed

# Sources

Values are resolved in this order, later sources winning:

 1. the env file (ENV_FILE, or .env when present); never overrides variables already set
 2. environment variables
 3. CLI flags

# CLI Flags

	-p               Server port
	-d               Database URL
	-t               Database type
	-caller-salt     Caller token salt
	-min-reward      Minimum poll reward
	-reject-closed   Reject responses to closed polls

# Environment Variables

	PORT                     → -p
	DATABASE_URL             → -d
	DATABASE_TYPE            → -t
	CALLER_TOKEN_SALT        → -caller-salt
	MIN_REWARD               → -min-reward
	REJECT_CLOSED_RESPONSES  → -reject-closed

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing for sqlite or postgres
  - DATABASE_TYPE is not one of sqlite, postgres, memory
  - CALLER_TOKEN_SALT is missing
  - MIN_REWARD is negative
  - ENV_FILE names a file that cannot be read
*/
package cliparse
