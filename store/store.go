// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"

	"github.com/mattjhawken/nexus/models"
)

var (
	ErrAlreadyExists = errors.New("record already exists")
	ErrNotFound      = errors.New("record not found")
	ErrReadOnly      = errors.New("write in read-only transaction")
)

// Sequence names
const (
	SeqPollID = "poll_id"
)

// Store runs transactions against one instance's registries.
// Update commits every write of fn or none of them.
type Store interface {
	Update(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the key-value surface available inside a transaction.
// Writes through a View transaction fail.
type Tx interface {
	User(ctx context.Context, address models.Address) (models.RegisteredUser, bool, error)
	PutUser(ctx context.Context, user models.RegisteredUser) error

	Poll(ctx context.Context, id int64) (models.PollRecord, bool, error)
	// InsertPoll returns ErrAlreadyExists if the id is taken.
	InsertPoll(ctx context.Context, poll models.PollRecord) error
	// AppendResponse returns ErrAlreadyExists if participant already responded
	// and ErrNotFound if the poll does not exist.
	AppendResponse(ctx context.Context, pollID int64, participant models.Address, response string) error
	SetPollOpen(ctx context.Context, pollID int64, open bool) error

	// NextSequence increments the named counter and returns its new value.
	NextSequence(ctx context.Context, name string) (int64, error)
	Sequence(ctx context.Context, name string) (int64, error)

	Profile(ctx context.Context, username string) (models.Profile, bool, error)
	// InsertProfile returns ErrAlreadyExists if the username is taken.
	InsertProfile(ctx context.Context, profile models.Profile) error
}
