// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/mattjhawken/nexus/auth"
	"github.com/mattjhawken/nexus/host"
	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/store"
)

// Code is the code identity the poll engine registers under.
var Code = host.HashCode("nexus/pollengine/v1")

// ClosedPollPolicy decides whether closed polls still take responses.
type ClosedPollPolicy int

const (
	AcceptClosedResponses ClosedPollPolicy = iota
	RejectClosedResponses
)

type Options struct {
	// MinReward is the smallest reward CreatePoll accepts.
	MinReward           models.Amount
	ClosedPollResponses ClosedPollPolicy
}

// Engine owns the user registry and the poll registry of one instance.
type Engine struct {
	store  store.Store
	opts   Options
	logger *slog.Logger
}

func New(st store.Store, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinReward < 0 {
		opts.MinReward = 0
	}
	return &Engine{store: st, opts: opts, logger: logger}
}

// Factory builds engines for host instantiation.
func Factory(opts Options, logger *slog.Logger) host.Factory {
	return func(ctx context.Context, env host.Env) (any, error) {
		if env.Store == nil {
			return nil, fmt.Errorf("poll engine requires a store")
		}
		l := logger
		if l == nil {
			l = slog.Default()
		}
		return New(env.Store, opts, l.With("instance", env.Address)), nil
	}
}

// RegisterUser stores a user record for the caller, replacing any earlier one.
func (e *Engine) RegisterUser(ctx context.Context, username string) (models.RegisteredUser, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return models.RegisteredUser{}, err
	}

	user := models.RegisteredUser{
		Address:     caller,
		Username:    username,
		Descriptors: []string{},
	}
	err = e.store.Update(ctx, func(tx store.Tx) error {
		return tx.PutUser(ctx, user)
	})
	if err != nil {
		e.logger.Error("failed to register user", "address", caller, "error", err)
		return models.RegisteredUser{}, err
	}

	e.logger.Info("user registered", "address", caller, "username", username)
	return user, nil
}

// GetUser looks up the registered user for an address.
func (e *Engine) GetUser(ctx context.Context, address models.Address) (models.RegisteredUser, bool, error) {
	var user models.RegisteredUser
	var found bool
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		user, found, err = tx.User(ctx, address)
		return err
	})
	return user, found, err
}

// CreatePoll allocates the next poll id and stores an open poll authored by
// the caller.
func (e *Engine) CreatePoll(ctx context.Context, title, description string, reward models.Amount) (models.PollRecord, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return models.PollRecord{}, err
	}

	var poll models.PollRecord
	err = e.store.Update(ctx, func(tx store.Tx) error {
		if err := requireUser(ctx, tx, caller); err != nil {
			return err
		}
		if reward < e.opts.MinReward {
			e.logger.Warn("poll reward below minimum",
				"author", caller,
				"reward", humanize.Comma(int64(reward)),
				"min_reward", humanize.Comma(int64(e.opts.MinReward)),
			)
			return ErrTaskRewardTooLow
		}
		next, err := tx.NextSequence(ctx, store.SeqPollID)
		if err != nil {
			return err
		}
		poll = models.PollRecord{
			ID:           next - 1,
			Author:       caller,
			Title:        title,
			Description:  description,
			Reward:       reward,
			Responses:    []string{},
			Participants: []models.Address{},
			Open:         true,
		}
		return tx.InsertPoll(ctx, poll)
	})
	if err != nil {
		e.logFailure("failed to create poll", caller, -1, err)
		return models.PollRecord{}, err
	}

	e.logger.Info("poll created",
		"poll_id", poll.ID,
		"author", caller,
		"reward", humanize.Comma(int64(reward)),
	)
	return poll, nil
}

// RespondToPoll records the caller's single response to a poll.
func (e *Engine) RespondToPoll(ctx context.Context, pollID int64, response string) (models.PollRecord, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return models.PollRecord{}, err
	}

	var poll models.PollRecord
	err = e.store.Update(ctx, func(tx store.Tx) error {
		if err := requireUser(ctx, tx, caller); err != nil {
			return err
		}
		var err error
		poll, err = requirePoll(ctx, tx, pollID)
		if err != nil {
			return err
		}
		if !poll.Open && e.opts.ClosedPollResponses == RejectClosedResponses {
			return ErrPollClosed
		}
		if poll.HasParticipant(caller) {
			return ErrUserAlreadyResponded
		}

		err = tx.AppendResponse(ctx, pollID, caller, response)
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrUserAlreadyResponded
		}
		if err != nil {
			return err
		}
		poll.Responses = append(poll.Responses, response)
		poll.Participants = append(poll.Participants, caller)
		return nil
	})
	if err != nil {
		e.logFailure("failed to respond to poll", caller, pollID, err)
		return models.PollRecord{}, err
	}

	e.logger.Info("poll response recorded",
		"poll_id", pollID,
		"participant", caller,
		"responses", len(poll.Responses),
	)
	return poll, nil
}

// ClosePoll closes a poll on behalf of its author. Closing a closed poll
// succeeds without writing.
func (e *Engine) ClosePoll(ctx context.Context, pollID int64) (models.PollRecord, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return models.PollRecord{}, err
	}

	var poll models.PollRecord
	err = e.store.Update(ctx, func(tx store.Tx) error {
		if err := requireUser(ctx, tx, caller); err != nil {
			return err
		}
		var err error
		poll, err = requirePoll(ctx, tx, pollID)
		if err != nil {
			return err
		}
		if poll.Author != caller {
			return ErrNotPollAuthor
		}
		if !poll.Open {
			return nil
		}
		poll.Open = false
		return tx.SetPollOpen(ctx, pollID, false)
	})
	if err != nil {
		e.logFailure("failed to close poll", caller, pollID, err)
		return models.PollRecord{}, err
	}

	e.logger.Info("poll closed", "poll_id", pollID, "author", caller)
	return poll, nil
}

// GetPoll looks up a poll by id.
func (e *Engine) GetPoll(ctx context.Context, pollID int64) (models.PollRecord, bool, error) {
	var poll models.PollRecord
	var found bool
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		poll, found, err = tx.Poll(ctx, pollID)
		return err
	})
	return poll, found, err
}

// PollCount returns how many poll ids have been assigned.
func (e *Engine) PollCount(ctx context.Context) (int64, error) {
	var count int64
	err := e.store.View(ctx, func(tx store.Tx) error {
		var err error
		count, err = tx.Sequence(ctx, store.SeqPollID)
		return err
	})
	return count, err
}

func requireUser(ctx context.Context, tx store.Tx, address models.Address) error {
	_, found, err := tx.User(ctx, address)
	if err != nil {
		return err
	}
	if !found {
		return ErrUserNotRegistered
	}
	return nil
}

func requirePoll(ctx context.Context, tx store.Tx, pollID int64) (models.PollRecord, error) {
	poll, found, err := tx.Poll(ctx, pollID)
	if err != nil {
		return models.PollRecord{}, err
	}
	if !found {
		return models.PollRecord{}, ErrPollNotFound
	}
	return poll, nil
}

// logFailure logs rejected preconditions at warn and storage faults at error.
func (e *Engine) logFailure(msg string, caller models.Address, pollID int64, err error) {
	attrs := []any{"caller", caller, "error", err}
	if pollID >= 0 {
		attrs = append(attrs, "poll_id", pollID)
	}
	switch {
	case errors.Is(err, ErrUserNotRegistered),
		errors.Is(err, ErrPollNotFound),
		errors.Is(err, ErrUserAlreadyResponded),
		errors.Is(err, ErrNotPollAuthor),
		errors.Is(err, ErrPollClosed),
		errors.Is(err, ErrTaskRewardTooLow):
		e.logger.Warn(msg, attrs...)
	default:
		e.logger.Error(msg, attrs...)
	}
}
