// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregator_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/mattjhawken/nexus/aggregator"
	"github.com/mattjhawken/nexus/auth"
	"github.com/mattjhawken/nexus/engine"
	"github.com/mattjhawken/nexus/host"
	"github.com/mattjhawken/nexus/models"
)

const deployer = models.Address("deployer")

var (
	quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
	rootSalt    = []byte("root")
)

func newTestAggregator(t *testing.T) (*aggregator.Aggregator, *host.Host) {
	t.Helper()
	h := host.New(nil, quietLogger)
	h.Register(engine.Code, engine.Factory(engine.Options{}, quietLogger))
	h.Register(aggregator.Code, aggregator.Factory(engine.Code, quietLogger))

	inst, err := h.Instantiate(context.Background(), host.InstantiateParams{
		Deployer: deployer,
		Code:     aggregator.Code,
		Salt:     rootSalt,
	})
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}
	agg, err := host.Ref[*aggregator.Aggregator](inst)
	if err != nil {
		t.Fatalf("Ref() error = %v", err)
	}
	return agg, h
}

func as(addr models.Address) context.Context {
	return auth.ContextWithCaller(context.Background(), addr)
}

func TestNewInstantiatesEngine(t *testing.T) {
	agg, h := newTestAggregator(t)

	want := host.InstanceAddress(agg.Address(), engine.Code, aggregator.EngineSalt)
	if agg.PollEngineAddress() != want {
		t.Errorf("PollEngineAddress() = %s, want %s", agg.PollEngineAddress(), want)
	}
	inst, ok := h.Lookup(want)
	if !ok {
		t.Fatal("engine instance not registered with the host")
	}
	if inst.Code != engine.Code {
		t.Errorf("engine code = %s, want %s", inst.Code, engine.Code)
	}
	if agg.PollEngine() == nil {
		t.Fatal("PollEngine() = nil")
	}
	if agg.PollEngine() != agg.PollEngine() {
		t.Error("PollEngine() changed between calls")
	}
}

func TestNewFailsWithoutEngineCode(t *testing.T) {
	h := host.New(nil, quietLogger)
	h.Register(aggregator.Code, aggregator.Factory(engine.Code, quietLogger))

	_, err := h.Instantiate(context.Background(), host.InstantiateParams{
		Deployer: deployer,
		Code:     aggregator.Code,
		Salt:     rootSalt,
	})
	if !errors.Is(err, host.ErrCodeNotFound) {
		t.Fatalf("Instantiate() error = %v, want %v", err, host.ErrCodeNotFound)
	}
	addr := host.InstanceAddress(deployer, aggregator.Code, rootSalt)
	if _, ok := h.Lookup(addr); ok {
		t.Error("aggregator registered despite failed construction")
	}
}

func TestCreateProfile(t *testing.T) {
	agg, _ := newTestAggregator(t)
	ctx := as("alice-addr")

	got, err := agg.CreateProfile(ctx, "alice", []string{"e1"}, []string{"s1", "s2"})
	if err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	want := models.Profile{
		Address:    "alice-addr",
		Username:   "alice",
		Experience: []string{"e1"},
		Skills:     []string{"s1", "s2"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("CreateProfile() = %+v, want %+v", got, want)
	}

	stored, found, err := agg.GetProfile(context.Background(), "alice")
	if err != nil || !found {
		t.Fatalf("GetProfile() = %v, %v", found, err)
	}
	if !reflect.DeepEqual(stored, want) {
		t.Errorf("GetProfile() = %+v, want %+v", stored, want)
	}
}

func TestCreateProfileUsernameTaken(t *testing.T) {
	agg, _ := newTestAggregator(t)

	if _, err := agg.CreateProfile(as("first"), "alice", []string{"e1"}, nil); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	_, err := agg.CreateProfile(as("second"), "alice", []string{"other"}, []string{"x"})
	if !errors.Is(err, aggregator.ErrUsernameTaken) {
		t.Fatalf("CreateProfile() error = %v, want %v", err, aggregator.ErrUsernameTaken)
	}

	stored, _, _ := agg.GetProfile(context.Background(), "alice")
	if stored.Address != "first" || !reflect.DeepEqual(stored.Experience, []string{"e1"}) {
		t.Errorf("original profile changed: %+v", stored)
	}
}

func TestCreateProfileTruncatesLists(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want int
	}{
		{"empty", 0, 0},
		{"under capacity", 3, 3},
		{"at capacity", models.ProfileListCapacity, models.ProfileListCapacity},
		{"over capacity", 12, models.ProfileListCapacity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, _ := newTestAggregator(t)
			entries := make([]string, tt.n)
			for i := range entries {
				entries[i] = fmt.Sprintf("s%d", i+1)
			}

			got, err := agg.CreateProfile(as("owner"), "user", entries, entries)
			if err != nil {
				t.Fatalf("CreateProfile() error = %v", err)
			}
			if len(got.Skills) != tt.want || len(got.Experience) != tt.want {
				t.Fatalf("lengths = %d/%d, want %d", len(got.Experience), len(got.Skills), tt.want)
			}
			if !reflect.DeepEqual(got.Skills, entries[:tt.want]) {
				t.Errorf("Skills = %v, want %v", got.Skills, entries[:tt.want])
			}
		})
	}
}

func TestCreateProfileCopiesInput(t *testing.T) {
	agg, _ := newTestAggregator(t)
	skills := []string{"go", "sql"}

	if _, err := agg.CreateProfile(as("owner"), "user", nil, skills); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	skills[0] = "changed"

	stored, _, _ := agg.GetProfile(context.Background(), "user")
	if stored.Skills[0] != "go" {
		t.Errorf("stored profile aliases caller slice: %v", stored.Skills)
	}
}

func TestSameAddressOwnsSeveralProfiles(t *testing.T) {
	agg, _ := newTestAggregator(t)
	ctx := as("owner")

	for _, name := range []string{"one", "two"} {
		if _, err := agg.CreateProfile(ctx, name, nil, nil); err != nil {
			t.Fatalf("CreateProfile(%s) error = %v", name, err)
		}
	}
	for _, name := range []string{"one", "two"} {
		p, found, _ := agg.GetProfile(context.Background(), name)
		if !found || p.Address != "owner" {
			t.Errorf("GetProfile(%s) = %+v, %v", name, p, found)
		}
	}
}

func TestCreateProfileRequiresCaller(t *testing.T) {
	agg, _ := newTestAggregator(t)

	_, err := agg.CreateProfile(context.Background(), "anon", nil, nil)
	if !errors.Is(err, auth.ErrNoCaller) {
		t.Errorf("CreateProfile() error = %v, want %v", err, auth.ErrNoCaller)
	}
}

func TestProfilesAndUsersAreIndependent(t *testing.T) {
	agg, _ := newTestAggregator(t)
	ctx := as("alice-addr")

	if _, err := agg.CreateProfile(ctx, "alice", nil, nil); err != nil {
		t.Fatalf("CreateProfile() error = %v", err)
	}
	if _, found, _ := agg.PollEngine().GetUser(context.Background(), "alice-addr"); found {
		t.Error("profile creation registered an engine user")
	}

	// Profile owners are not engine users until they register there
	if _, err := agg.PollEngine().CreatePoll(ctx, "T", "D", 1); !errors.Is(err, engine.ErrUserNotRegistered) {
		t.Errorf("CreatePoll() error = %v, want %v", err, engine.ErrUserNotRegistered)
	}
	if _, err := agg.PollEngine().RegisterUser(ctx, "alice"); err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
	if _, found, _ := agg.GetProfile(context.Background(), "bob"); found {
		t.Error("engine registration created a profile")
	}
}

func TestPollEngineThroughAggregator(t *testing.T) {
	agg, _ := newTestAggregator(t)
	pe := agg.PollEngine()
	ctx := as("bob-addr")

	if _, err := pe.RegisterUser(ctx, "bob"); err != nil {
		t.Fatalf("RegisterUser() error = %v", err)
	}
	poll, err := pe.CreatePoll(ctx, "T", "D", 1)
	if err != nil {
		t.Fatalf("CreatePoll() error = %v", err)
	}
	got, found, err := pe.GetPoll(context.Background(), poll.ID)
	if err != nil || !found {
		t.Fatalf("GetPoll() = %v, %v", found, err)
	}
	if got.Author != "bob-addr" || !got.Open || got.Title != "T" {
		t.Errorf("GetPoll() = %+v", got)
	}
}

func TestConcurrentUsernameClaims(t *testing.T) {
	agg, _ := newTestAggregator(t)

	const claimants = 25
	var wg sync.WaitGroup
	var created, taken atomic.Int32
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := agg.CreateProfile(as(models.Address(fmt.Sprintf("addr-%d", i))), "contested", nil, nil)
			switch {
			case err == nil:
				created.Add(1)
			case errors.Is(err, aggregator.ErrUsernameTaken):
				taken.Add(1)
			default:
				t.Errorf("CreateProfile() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created.Load() != 1 {
		t.Errorf("created = %d, want 1", created.Load())
	}
	if taken.Load() != claimants-1 {
		t.Errorf("taken = %d, want %d", taken.Load(), claimants-1)
	}
}
