// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sqlstore provides a database/sql backed store.Store for
// PostgreSQL and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/store"
)

const (
	kindExperience = "experience"
	kindSkill      = "skill"
)

// Store scopes every row it reads or writes to one instance address.
type Store struct {
	db       *sql.DB
	instance models.Address
}

func New(db *sql.DB, instance models.Address) *Store {
	return &Store{db: db, instance: instance}
}

// Opener returns a host.StoreOpener that hands out instance-scoped stores
// over a shared connection pool.
func Opener(db *sql.DB) func(ctx context.Context, instance models.Address) (store.Store, error) {
	return func(ctx context.Context, instance models.Address) (store.Store, error) {
		if db == nil {
			return nil, fmt.Errorf("storage is not configured")
		}
		return New(db, instance), nil
	}
}

func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *Store) run(ctx context.Context, readOnly bool, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&tx{tx: sqlTx, instance: string(s.instance), readOnly: readOnly}); err != nil {
		return err
	}
	if readOnly {
		return nil
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type tx struct {
	tx       *sql.Tx
	instance string
	readOnly bool
}

func (t *tx) writable() error {
	if t.readOnly {
		return store.ErrReadOnly
	}
	return nil
}

func (t *tx) User(ctx context.Context, address models.Address) (models.RegisteredUser, bool, error) {
	user := models.RegisteredUser{Address: address}
	err := t.tx.QueryRowContext(ctx, `
		SELECT username FROM registered_user WHERE instance = $1 AND address = $2
	`, t.instance, string(address)).Scan(&user.Username)
	if err == sql.ErrNoRows {
		return models.RegisteredUser{}, false, nil
	}
	if err != nil {
		return models.RegisteredUser{}, false, fmt.Errorf("query user: %w", err)
	}

	user.Descriptors, err = t.queryStrings(ctx, `
		SELECT descriptor FROM user_descriptor
		WHERE instance = $1 AND address = $2
		ORDER BY ordinal
	`, t.instance, string(address))
	if err != nil {
		return models.RegisteredUser{}, false, fmt.Errorf("query user descriptors: %w", err)
	}
	return user, true, nil
}

func (t *tx) PutUser(ctx context.Context, user models.RegisteredUser) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO registered_user (instance, address, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (instance, address) DO UPDATE SET username = excluded.username
	`, t.instance, string(user.Address), user.Username)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	// Re-registration replaces the whole record
	_, err = t.tx.ExecContext(ctx, `
		DELETE FROM user_descriptor WHERE instance = $1 AND address = $2
	`, t.instance, string(user.Address))
	if err != nil {
		return fmt.Errorf("clear user descriptors: %w", err)
	}
	for i, descriptor := range user.Descriptors {
		_, err = t.tx.ExecContext(ctx, `
			INSERT INTO user_descriptor (instance, address, ordinal, descriptor)
			VALUES ($1, $2, $3, $4)
		`, t.instance, string(user.Address), i, descriptor)
		if err != nil {
			return fmt.Errorf("insert user descriptor: %w", err)
		}
	}
	return nil
}

func (t *tx) Poll(ctx context.Context, id int64) (models.PollRecord, bool, error) {
	var poll models.PollRecord
	var author string
	var reward int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, author, title, description, reward, is_open
		FROM poll
		WHERE instance = $1 AND id = $2
	`, t.instance, id).Scan(&poll.ID, &author, &poll.Title, &poll.Description, &reward, &poll.Open)
	if err == sql.ErrNoRows {
		return models.PollRecord{}, false, nil
	}
	if err != nil {
		return models.PollRecord{}, false, fmt.Errorf("query poll: %w", err)
	}
	poll.Author = models.Address(author)
	poll.Reward = models.Amount(reward)

	rows, err := t.tx.QueryContext(ctx, `
		SELECT participant, response
		FROM poll_response
		WHERE instance = $1 AND poll_id = $2
		ORDER BY ordinal
	`, t.instance, id)
	if err != nil {
		return models.PollRecord{}, false, fmt.Errorf("query poll responses: %w", err)
	}
	defer rows.Close()

	poll.Responses = []string{}
	poll.Participants = []models.Address{}
	for rows.Next() {
		var participant, response string
		if err := rows.Scan(&participant, &response); err != nil {
			return models.PollRecord{}, false, fmt.Errorf("scan poll response: %w", err)
		}
		poll.Participants = append(poll.Participants, models.Address(participant))
		poll.Responses = append(poll.Responses, response)
	}
	if err := rows.Err(); err != nil {
		return models.PollRecord{}, false, fmt.Errorf("iterate poll responses: %w", err)
	}
	return poll, true, nil
}

func (t *tx) InsertPoll(ctx context.Context, poll models.PollRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO poll (instance, id, author, title, description, reward, is_open, response_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, t.instance, poll.ID, string(poll.Author), poll.Title, poll.Description, int64(poll.Reward), poll.Open, 0)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert poll: %w", err)
	}
	if len(poll.Responses) != len(poll.Participants) {
		return fmt.Errorf("insert poll: %d responses for %d participants", len(poll.Responses), len(poll.Participants))
	}
	for i, response := range poll.Responses {
		if err := t.AppendResponse(ctx, poll.ID, poll.Participants[i], response); err != nil {
			return err
		}
	}
	return nil
}

func (t *tx) AppendResponse(ctx context.Context, pollID int64, participant models.Address, response string) error {
	if err := t.writable(); err != nil {
		return err
	}

	// Bumping the count first locks the poll row, so concurrent appends
	// get distinct ordinals.
	var count int64
	err := t.tx.QueryRowContext(ctx, `
		UPDATE poll SET response_count = response_count + 1
		WHERE instance = $1 AND id = $2
		RETURNING response_count
	`, t.instance, pollID).Scan(&count)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("reserve response slot: %w", err)
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO poll_response (instance, poll_id, ordinal, participant, response)
		VALUES ($1, $2, $3, $4, $5)
	`, t.instance, pollID, count-1, string(participant), response)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert poll response: %w", err)
	}
	return nil
}

func (t *tx) SetPollOpen(ctx context.Context, pollID int64, open bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, `
		UPDATE poll SET is_open = $1 WHERE instance = $2 AND id = $3
	`, open, t.instance, pollID)
	if err != nil {
		return fmt.Errorf("update poll: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update poll: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (t *tx) NextSequence(ctx context.Context, name string) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	var value int64
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO counter (instance, name, value)
		VALUES ($1, $2, 1)
		ON CONFLICT (instance, name) DO UPDATE SET value = counter.value + 1
		RETURNING value
	`, t.instance, name).Scan(&value)
	if err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	return value, nil
}

func (t *tx) Sequence(ctx context.Context, name string) (int64, error) {
	var value int64
	err := t.tx.QueryRowContext(ctx, `
		SELECT value FROM counter WHERE instance = $1 AND name = $2
	`, t.instance, name).Scan(&value)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("query sequence %s: %w", name, err)
	}
	return value, nil
}

func (t *tx) Profile(ctx context.Context, username string) (models.Profile, bool, error) {
	profile := models.Profile{Username: username}
	var address string
	err := t.tx.QueryRowContext(ctx, `
		SELECT address FROM profile WHERE instance = $1 AND username = $2
	`, t.instance, username).Scan(&address)
	if err == sql.ErrNoRows {
		return models.Profile{}, false, nil
	}
	if err != nil {
		return models.Profile{}, false, fmt.Errorf("query profile: %w", err)
	}
	profile.Address = models.Address(address)

	const entries = `
		SELECT value FROM profile_entry
		WHERE instance = $1 AND username = $2 AND kind = $3
		ORDER BY ordinal
	`
	if profile.Experience, err = t.queryStrings(ctx, entries, t.instance, username, kindExperience); err != nil {
		return models.Profile{}, false, fmt.Errorf("query profile experience: %w", err)
	}
	if profile.Skills, err = t.queryStrings(ctx, entries, t.instance, username, kindSkill); err != nil {
		return models.Profile{}, false, fmt.Errorf("query profile skills: %w", err)
	}
	return profile, true, nil
}

func (t *tx) InsertProfile(ctx context.Context, profile models.Profile) error {
	if err := t.writable(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO profile (instance, username, address)
		VALUES ($1, $2, $3)
	`, t.instance, profile.Username, string(profile.Address))
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert profile: %w", err)
	}

	insert := func(kind string, values []string) error {
		for i, value := range values {
			_, err := t.tx.ExecContext(ctx, `
				INSERT INTO profile_entry (instance, username, kind, ordinal, value)
				VALUES ($1, $2, $3, $4, $5)
			`, t.instance, profile.Username, kind, i, value)
			if err != nil {
				return fmt.Errorf("insert profile %s: %w", kind, err)
			}
		}
		return nil
	}
	if err := insert(kindExperience, profile.Experience); err != nil {
		return err
	}
	return insert(kindSkill, profile.Skills)
}

// queryStrings runs a single-column query and collects the values in order.
func (t *tx) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	return values, rows.Err()
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
