// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package engine implements the poll engine: a user registry keyed by address
and a poll registry keyed by sequential id.

# Operations

The caller is taken from the context (see auth.ContextWithCaller):

	RegisterUser(ctx, username)                 → overwrite caller's record
	CreatePoll(ctx, title, description, reward) → next id, open poll
	RespondToPoll(ctx, id, response)            → one response per participant
	ClosePoll(ctx, id)                          → author only, idempotent
	GetPoll(ctx, id)                            → lookup

Every operation runs in a single store transaction. A rejected precondition
returns one of the package errors and writes nothing:

  - ErrUserNotRegistered: caller has no user record
  - ErrPollNotFound: id was never assigned
  - ErrUserAlreadyResponded: caller is already a participant
  - ErrNotPollAuthor: close attempted by someone else
  - ErrPollClosed: response to a closed poll under RejectClosedResponses
  - ErrTaskRewardTooLow: reward below Options.MinReward

# Poll Lifecycle

	open ──ClosePoll(author)──> closed

Closed is terminal. Whether a closed poll still takes responses is set by
Options.ClosedPollResponses; AcceptClosedResponses is the default.

# Identifiers

Poll ids come from the store sequence store.SeqPollID, advanced inside the
creating transaction. Ids start at 0 and a failed create does not consume one.
*/
package engine
