// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the nexus API.

# Handler Types

  - IdentityHandler: Issues addresses and caller tokens
  - PollHandler: Poll engine users and polls
  - ProfileHandler: Aggregator profiles

PollHandler only sees the aggregator.PollEngine interface:

	pollHandler := handlers.NewPollHandler(agg.PollEngine())

# Caller Identity

Handlers read the caller from the request context. The router wraps every
mutating route in middleware.WithCaller, which resolves X-Caller-Token.

# Error Mapping

StatusFor translates engine and aggregator errors:

	auth.ErrNoCaller, auth.ErrInvalidToken       → 401
	engine.ErrUserNotRegistered                  → 403
	engine.ErrNotPollAuthor                      → 403
	engine.ErrPollNotFound                       → 404
	engine.ErrUserAlreadyResponded               → 409
	engine.ErrPollClosed                         → 409
	aggregator.ErrUsernameTaken                  → 409
	engine.ErrTaskRewardTooLow                   → 400
	anything else                                → 500 (logged, not echoed)
*/
package handlers
