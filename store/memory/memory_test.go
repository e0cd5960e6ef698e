// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/store"
)

func TestUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	boom := errors.New("boom")

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.PutUser(ctx, models.RegisteredUser{Address: "a", Username: "alice"}); err != nil {
			return err
		}
		if _, err := tx.NextSequence(ctx, store.SeqPollID); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want %v", err, boom)
	}

	err = s.View(ctx, func(tx store.Tx) error {
		if _, ok, _ := tx.User(ctx, "a"); ok {
			t.Error("user written by a failed transaction is visible")
		}
		seq, _ := tx.Sequence(ctx, store.SeqPollID)
		if seq != 0 {
			t.Errorf("sequence = %d, want 0", seq)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("View() error = %v", err)
	}
}

func TestStagedWritesVisibleInsideTransaction(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.InsertPoll(ctx, models.PollRecord{ID: 0, Author: "a", Open: true}); err != nil {
			return err
		}
		if err := tx.AppendResponse(ctx, 0, "b", "yes"); err != nil {
			return err
		}
		poll, ok, _ := tx.Poll(ctx, 0)
		if !ok || len(poll.Responses) != 1 {
			t.Errorf("staged poll = %+v, %v", poll, ok)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
}

func TestAppendResponseRejectsDuplicateParticipant(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.InsertPoll(ctx, models.PollRecord{ID: 0, Author: "a", Open: true}); err != nil {
			return err
		}
		return tx.AppendResponse(ctx, 0, "b", "first")
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	err = s.Update(ctx, func(tx store.Tx) error {
		return tx.AppendResponse(ctx, 0, "b", "second")
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("AppendResponse() error = %v, want %v", err, store.ErrAlreadyExists)
	}

	err = s.Update(ctx, func(tx store.Tx) error {
		return tx.AppendResponse(ctx, 7, "b", "missing")
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("AppendResponse() error = %v, want %v", err, store.ErrNotFound)
	}
}

func TestInsertCollisions(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	insert := func() error {
		return s.Update(ctx, func(tx store.Tx) error {
			return tx.InsertProfile(ctx, models.Profile{Address: "a", Username: "alice"})
		})
	}
	if err := insert(); err != nil {
		t.Fatalf("first InsertProfile() error = %v", err)
	}
	if err := insert(); !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("second InsertProfile() error = %v, want %v", err, store.ErrAlreadyExists)
	}

	err := s.Update(ctx, func(tx store.Tx) error {
		if err := tx.InsertPoll(ctx, models.PollRecord{ID: 3}); err != nil {
			return err
		}
		return tx.InsertPoll(ctx, models.PollRecord{ID: 3})
	})
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Fatalf("InsertPoll() error = %v, want %v", err, store.ErrAlreadyExists)
	}
}

func TestViewIsReadOnly(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	err := s.View(ctx, func(tx store.Tx) error {
		return tx.PutUser(ctx, models.RegisteredUser{Address: "a"})
	})
	if !errors.Is(err, store.ErrReadOnly) {
		t.Fatalf("PutUser() in View error = %v, want %v", err, store.ErrReadOnly)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if err := s.Update(ctx, func(tx store.Tx) error {
		return tx.InsertProfile(ctx, models.Profile{Username: "alice", Skills: []string{"go"}})
	}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	_ = s.View(ctx, func(tx store.Tx) error {
		p, _, _ := tx.Profile(ctx, "alice")
		p.Skills[0] = "mutated"
		return nil
	})
	_ = s.View(ctx, func(tx store.Tx) error {
		p, _, _ := tx.Profile(ctx, "alice")
		if p.Skills[0] != "go" {
			t.Errorf("stored profile mutated through a returned copy: %v", p.Skills)
		}
		return nil
	})
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewStore()
	called := false
	err := s.Update(ctx, func(tx store.Tx) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Update() error = %v, want %v", err, context.Canceled)
	}
	if called {
		t.Error("transaction ran with a canceled context")
	}
}
