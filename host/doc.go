// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package host instantiates modules and hands out references to them.

# Code Registration

Modules are registered by code hash:

	h := host.New(sqlstore.Opener(conn), logger)
	h.Register(engine.Code, engine.Factory(opts, logger))

# Instantiation

Instantiate derives the instance address from the deployer, the code hash,
and a salt, opens the instance's own store, and runs the factory:

	inst, err := h.Instantiate(ctx, host.InstantiateParams{
		Deployer:  self,
		Code:      engine.Code,
		Endowment: 0,
		Salt:      []byte{0xDE, 0xAD, 0xBE, 0xEF},
	})

The address is the first 20 bytes of sha256(deployer || code || salt), hex
encoded, so the same parameters always land on the same address and the
same persisted state. A second instantiation at a taken address fails with
ErrAlreadyInstantiated.

Factories may instantiate further modules through Env.Host. If a factory
fails, its address is released and the error propagates to the caller.

# References

Callers assert the interface they need:

	polls, err := host.Ref[PollEngine](inst)
*/
package host
