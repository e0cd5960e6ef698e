// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package memory provides an in-process store.Store.
package memory

import (
	"context"
	"sync"

	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/store"
)

// Store keeps one instance's registries in maps. Transactions are
// serialised by mu; writes are staged and applied only on commit.
type Store struct {
	mu       sync.RWMutex
	users    map[models.Address]models.RegisteredUser
	polls    map[int64]models.PollRecord
	profiles map[string]models.Profile
	seqs     map[string]int64
}

func NewStore() *Store {
	return &Store{
		users:    make(map[models.Address]models.RegisteredUser),
		polls:    make(map[int64]models.PollRecord),
		profiles: make(map[string]models.Profile),
		seqs:     make(map[string]int64),
	}
}

// Open satisfies host.StoreOpener; every instance gets a fresh Store.
func Open(_ context.Context, _ models.Address) (store.Store, error) {
	return NewStore(), nil
}

func (s *Store) Update(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	t := newTx(s, false)
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

func (s *Store) View(ctx context.Context, fn func(tx store.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(newTx(s, true))
}

type tx struct {
	base     *Store
	readOnly bool

	users    map[models.Address]models.RegisteredUser
	polls    map[int64]models.PollRecord
	profiles map[string]models.Profile
	seqs     map[string]int64
}

func newTx(base *Store, readOnly bool) *tx {
	return &tx{
		base:     base,
		readOnly: readOnly,
		users:    make(map[models.Address]models.RegisteredUser),
		polls:    make(map[int64]models.PollRecord),
		profiles: make(map[string]models.Profile),
		seqs:     make(map[string]int64),
	}
}

func (t *tx) commit() {
	for k, v := range t.users {
		t.base.users[k] = v
	}
	for k, v := range t.polls {
		t.base.polls[k] = v
	}
	for k, v := range t.profiles {
		t.base.profiles[k] = v
	}
	for k, v := range t.seqs {
		t.base.seqs[k] = v
	}
}

func (t *tx) writable() error {
	if t.readOnly {
		return store.ErrReadOnly
	}
	return nil
}

func (t *tx) User(_ context.Context, address models.Address) (models.RegisteredUser, bool, error) {
	if u, ok := t.users[address]; ok {
		return u.Clone(), true, nil
	}
	u, ok := t.base.users[address]
	if !ok {
		return models.RegisteredUser{}, false, nil
	}
	return u.Clone(), true, nil
}

func (t *tx) PutUser(_ context.Context, user models.RegisteredUser) error {
	if err := t.writable(); err != nil {
		return err
	}
	t.users[user.Address] = user.Clone()
	return nil
}

func (t *tx) Poll(_ context.Context, id int64) (models.PollRecord, bool, error) {
	if p, ok := t.polls[id]; ok {
		return p.Clone(), true, nil
	}
	p, ok := t.base.polls[id]
	if !ok {
		return models.PollRecord{}, false, nil
	}
	return p.Clone(), true, nil
}

func (t *tx) InsertPoll(ctx context.Context, poll models.PollRecord) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists, _ := t.Poll(ctx, poll.ID); exists {
		return store.ErrAlreadyExists
	}
	t.polls[poll.ID] = poll.Clone()
	return nil
}

func (t *tx) AppendResponse(ctx context.Context, pollID int64, participant models.Address, response string) error {
	if err := t.writable(); err != nil {
		return err
	}
	poll, exists, _ := t.Poll(ctx, pollID)
	if !exists {
		return store.ErrNotFound
	}
	if poll.HasParticipant(participant) {
		return store.ErrAlreadyExists
	}
	poll.Responses = append(poll.Responses, response)
	poll.Participants = append(poll.Participants, participant)
	t.polls[pollID] = poll
	return nil
}

func (t *tx) SetPollOpen(ctx context.Context, pollID int64, open bool) error {
	if err := t.writable(); err != nil {
		return err
	}
	poll, exists, _ := t.Poll(ctx, pollID)
	if !exists {
		return store.ErrNotFound
	}
	poll.Open = open
	t.polls[pollID] = poll
	return nil
}

func (t *tx) NextSequence(ctx context.Context, name string) (int64, error) {
	if err := t.writable(); err != nil {
		return 0, err
	}
	current, _ := t.Sequence(ctx, name)
	t.seqs[name] = current + 1
	return current + 1, nil
}

func (t *tx) Sequence(_ context.Context, name string) (int64, error) {
	if v, ok := t.seqs[name]; ok {
		return v, nil
	}
	return t.base.seqs[name], nil
}

func (t *tx) Profile(_ context.Context, username string) (models.Profile, bool, error) {
	if p, ok := t.profiles[username]; ok {
		return p.Clone(), true, nil
	}
	p, ok := t.base.profiles[username]
	if !ok {
		return models.Profile{}, false, nil
	}
	return p.Clone(), true, nil
}

func (t *tx) InsertProfile(ctx context.Context, profile models.Profile) error {
	if err := t.writable(); err != nil {
		return err
	}
	if _, exists, _ := t.Profile(ctx, profile.Username); exists {
		return store.ErrAlreadyExists
	}
	t.profiles[profile.Username] = profile.Clone()
	return nil
}
