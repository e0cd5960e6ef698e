// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattjhawken/nexus/auth"
	"github.com/mattjhawken/nexus/host"
	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/store"
)

// Code is the code identity the aggregator registers under.
var Code = host.HashCode("nexus/aggregator/v1")

// EngineSalt is the salt the poll engine is instantiated with.
var EngineSalt = []byte{0xDE, 0xAD, 0xBE, 0xEF}

// PollEngine is the poll engine surface the aggregator hands out.
type PollEngine interface {
	RegisterUser(ctx context.Context, username string) (models.RegisteredUser, error)
	GetUser(ctx context.Context, address models.Address) (models.RegisteredUser, bool, error)
	CreatePoll(ctx context.Context, title, description string, reward models.Amount) (models.PollRecord, error)
	RespondToPoll(ctx context.Context, pollID int64, response string) (models.PollRecord, error)
	ClosePoll(ctx context.Context, pollID int64) (models.PollRecord, error)
	GetPoll(ctx context.Context, pollID int64) (models.PollRecord, bool, error)
	PollCount(ctx context.Context) (int64, error)
}

type Aggregator struct {
	address       models.Address
	store         store.Store
	engine        PollEngine
	engineAddress models.Address
	logger        *slog.Logger
}

// New instantiates the poll engine identified by engineCode and returns an
// aggregator holding it.
func New(ctx context.Context, env host.Env, engineCode host.CodeHash, logger *slog.Logger) (*Aggregator, error) {
	logger = resolveLogger(logger)
	if env.Host == nil {
		return nil, fmt.Errorf("aggregator requires a host")
	}
	if env.Store == nil {
		return nil, fmt.Errorf("aggregator requires a store")
	}

	inst, err := env.Host.Instantiate(ctx, host.InstantiateParams{
		Deployer:  env.Address,
		Code:      engineCode,
		Endowment: 0,
		Salt:      EngineSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("instantiate poll engine: %w", err)
	}
	engine, err := host.Ref[PollEngine](inst)
	if err != nil {
		return nil, fmt.Errorf("instantiate poll engine: %w", err)
	}

	logger.Info("poll engine attached", "aggregator", env.Address, "engine", inst.Address)
	return &Aggregator{
		address:       env.Address,
		store:         env.Store,
		engine:        engine,
		engineAddress: inst.Address,
		logger:        logger,
	}, nil
}

// Factory builds aggregators for host instantiation.
func Factory(engineCode host.CodeHash, logger *slog.Logger) host.Factory {
	return func(ctx context.Context, env host.Env) (any, error) {
		l := resolveLogger(logger).With("instance", env.Address)
		return New(ctx, env, engineCode, l)
	}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// CreateProfile registers a profile owned by the caller under a unique
// username. Lists longer than models.ProfileListCapacity are truncated.
func (a *Aggregator) CreateProfile(ctx context.Context, username string, experience, skills []string) (models.Profile, error) {
	caller, err := auth.CallerFromContext(ctx)
	if err != nil {
		return models.Profile{}, err
	}

	profile := models.Profile{
		Address:    caller,
		Username:   username,
		Experience: capped(experience),
		Skills:     capped(skills),
	}
	err = a.store.Update(ctx, func(tx store.Tx) error {
		_, found, err := tx.Profile(ctx, username)
		if err != nil {
			return err
		}
		if found {
			return ErrUsernameTaken
		}
		return tx.InsertProfile(ctx, profile)
	})
	if errors.Is(err, store.ErrAlreadyExists) {
		err = ErrUsernameTaken
	}
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			a.logger.Warn("profile username taken", "username", username, "caller", caller)
		} else {
			a.logger.Error("failed to create profile", "username", username, "caller", caller, "error", err)
		}
		return models.Profile{}, err
	}

	a.logger.Info("profile created",
		"username", username,
		"owner", caller,
		"experience", len(profile.Experience),
		"skills", len(profile.Skills),
	)
	return profile, nil
}

// GetProfile looks up a profile by username.
func (a *Aggregator) GetProfile(ctx context.Context, username string) (models.Profile, bool, error) {
	var profile models.Profile
	var found bool
	err := a.store.View(ctx, func(tx store.Tx) error {
		var err error
		profile, found, err = tx.Profile(ctx, username)
		return err
	})
	return profile, found, err
}

func (a *Aggregator) PollEngine() PollEngine {
	return a.engine
}

func (a *Aggregator) PollEngineAddress() models.Address {
	return a.engineAddress
}

func (a *Aggregator) Address() models.Address {
	return a.address
}

func capped(entries []string) []string {
	n := min(len(entries), models.ProfileListCapacity)
	out := make([]string, n)
	copy(out, entries[:n])
	return out
}
