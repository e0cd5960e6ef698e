// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package host

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/store"
	"github.com/mattjhawken/nexus/store/memory"
)

var (
	ErrCodeNotFound        = errors.New("code not registered")
	ErrAlreadyInstantiated = errors.New("instance already exists at address")
	ErrNegativeEndowment   = errors.New("endowment must not be negative")
	ErrRefType             = errors.New("instance does not expose the requested interface")
)

// instanceAddressLen is the byte length of a derived instance address
const instanceAddressLen = 20

// CodeHash identifies a registered module implementation.
type CodeHash [sha256.Size]byte

func (c CodeHash) String() string {
	return hex.EncodeToString(c[:])
}

// HashCode derives the code identity of a named module implementation.
func HashCode(name string) CodeHash {
	return sha256.Sum256([]byte(name))
}

// StoreOpener hands out the persistent store owned by one instance.
type StoreOpener func(ctx context.Context, instance models.Address) (store.Store, error)

// Env is what a module sees while it is being constructed.
type Env struct {
	Address   models.Address
	Deployer  models.Address
	Endowment models.Amount
	Store     store.Store
	Host      *Host
}

// Factory constructs a module and returns the reference callers will hold.
type Factory func(ctx context.Context, env Env) (any, error)

type InstantiateParams struct {
	Deployer  models.Address
	Code      CodeHash
	Endowment models.Amount
	Salt      []byte
}

type Instance struct {
	Address models.Address
	Code    CodeHash
	Ref     any
}

// Host registers module code and instantiates it at deterministic
// addresses.
type Host struct {
	mu        sync.Mutex
	open      StoreOpener
	codes     map[CodeHash]Factory
	instances map[models.Address]*Instance
	logger    *slog.Logger
}

func New(open StoreOpener, logger *slog.Logger) *Host {
	if logger == nil {
		logger = slog.Default()
	}
	if open == nil {
		open = memory.Open
	}
	return &Host{
		open:      open,
		codes:     make(map[CodeHash]Factory),
		instances: make(map[models.Address]*Instance),
		logger:    logger,
	}
}

// Register makes code available for instantiation, replacing any factory
// previously registered under the same hash.
func (h *Host) Register(code CodeHash, factory Factory) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.codes[code] = factory
}

// InstanceAddress derives the address an instantiation lands on.
func InstanceAddress(deployer models.Address, code CodeHash, salt []byte) models.Address {
	h := sha256.New()
	h.Write([]byte(deployer))
	h.Write(code[:])
	h.Write(salt)
	sum := h.Sum(nil)
	return models.Address(hex.EncodeToString(sum[:instanceAddressLen]))
}

// Instantiate runs the factory registered for p.Code. Factories may
// instantiate further modules; a factory error leaves no instance behind.
func (h *Host) Instantiate(ctx context.Context, p InstantiateParams) (Instance, error) {
	if err := ctx.Err(); err != nil {
		return Instance{}, err
	}
	if p.Endowment < 0 {
		return Instance{}, ErrNegativeEndowment
	}
	address := InstanceAddress(p.Deployer, p.Code, p.Salt)

	h.mu.Lock()
	factory, ok := h.codes[p.Code]
	if !ok {
		h.mu.Unlock()
		return Instance{}, fmt.Errorf("instantiate %s: %w", p.Code, ErrCodeNotFound)
	}
	if _, taken := h.instances[address]; taken {
		h.mu.Unlock()
		return Instance{}, fmt.Errorf("instantiate %s: %w", address, ErrAlreadyInstantiated)
	}
	// Reserve the address; nil marks an instance under construction.
	h.instances[address] = nil
	h.mu.Unlock()

	instance, err := h.construct(ctx, factory, address, p)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		delete(h.instances, address)
		h.logger.Warn("instantiation failed",
			"code", p.Code.String(),
			"address", address,
			"deployer", p.Deployer,
			"error", err,
		)
		return Instance{}, err
	}
	h.instances[address] = &instance
	h.logger.Info("instance created",
		"code", p.Code.String(),
		"address", address,
		"deployer", p.Deployer,
		"endowment", p.Endowment,
	)
	return instance, nil
}

func (h *Host) construct(ctx context.Context, factory Factory, address models.Address, p InstantiateParams) (Instance, error) {
	st, err := h.open(ctx, address)
	if err != nil {
		return Instance{}, fmt.Errorf("open store for %s: %w", address, err)
	}
	ref, err := factory(ctx, Env{
		Address:   address,
		Deployer:  p.Deployer,
		Endowment: p.Endowment,
		Store:     st,
		Host:      h,
	})
	if err != nil {
		return Instance{}, fmt.Errorf("construct %s: %w", address, err)
	}
	return Instance{Address: address, Code: p.Code, Ref: ref}, nil
}

// Lookup returns a fully constructed instance.
func (h *Host) Lookup(address models.Address) (Instance, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	instance := h.instances[address]
	if instance == nil {
		return Instance{}, false
	}
	return *instance, true
}

// Ref asserts that an instance exposes T.
func Ref[T any](instance Instance) (T, error) {
	ref, ok := instance.Ref.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("instance %s: %w", instance.Address, ErrRefType)
	}
	return ref, nil
}
