// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package deploy

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mattjhawken/nexus/aggregator"
	"github.com/mattjhawken/nexus/cliparse"
	"github.com/mattjhawken/nexus/engine"
	"github.com/mattjhawken/nexus/host"
	"github.com/mattjhawken/nexus/models"
)

// RootDeployer and RootSalt fix the aggregator address, so a persistent store
// finds the same registries after a restart.
var (
	RootDeployer = models.Address("0000000000000000000000000000000000000000")
	RootSalt     = []byte("nexus")
)

// EngineOptions maps config onto poll engine options.
func EngineOptions(cfg cliparse.Config) engine.Options {
	opts := engine.Options{MinReward: models.Amount(cfg.MinReward)}
	if cfg.RejectClosedResponses {
		opts.ClosedPollResponses = engine.RejectClosedResponses
	}
	return opts
}

// Deploy registers the engine and aggregator code on a new host and
// instantiates the aggregator, which in turn instantiates its poll engine.
// A nil open gives every instance its own memory store.
func Deploy(ctx context.Context, open host.StoreOpener, cfg cliparse.Config, logger *slog.Logger) (*aggregator.Aggregator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	h := host.New(open, logger)
	h.Register(engine.Code, engine.Factory(EngineOptions(cfg), logger))
	h.Register(aggregator.Code, aggregator.Factory(engine.Code, logger))

	inst, err := h.Instantiate(ctx, host.InstantiateParams{
		Deployer: RootDeployer,
		Code:     aggregator.Code,
		Salt:     RootSalt,
	})
	if err != nil {
		return nil, fmt.Errorf("deploy aggregator: %w", err)
	}
	agg, err := host.Ref[*aggregator.Aggregator](inst)
	if err != nil {
		return nil, fmt.Errorf("deploy aggregator: %w", err)
	}

	logger.Info("aggregator deployed",
		"aggregator", agg.Address(),
		"poll_engine", agg.PollEngineAddress(),
	)
	return agg, nil
}
