// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package host

import (
	"context"
	"errors"
	"testing"

	"github.com/mattjhawken/nexus/models"
)

type counter struct {
	env Env
}

func counterFactory(ctx context.Context, env Env) (any, error) {
	return &counter{env: env}, nil
}

var (
	counterCode = HashCode("test/counter")
	testSalt    = []byte{0xDE, 0xAD, 0xBE, 0xEF}
)

func TestInstanceAddress(t *testing.T) {
	a := InstanceAddress("deployer", counterCode, testSalt)
	if a != InstanceAddress("deployer", counterCode, testSalt) {
		t.Error("InstanceAddress() is not deterministic")
	}
	if len(a) != instanceAddressLen*2 {
		t.Errorf("InstanceAddress() length = %d, want %d", len(a), instanceAddressLen*2)
	}

	tests := []struct {
		name     string
		deployer models.Address
		code     CodeHash
		salt     []byte
	}{
		{"different deployer", "other", counterCode, testSalt},
		{"different code", "deployer", HashCode("test/other"), testSalt},
		{"different salt", "deployer", counterCode, []byte{0x01}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if InstanceAddress(tt.deployer, tt.code, tt.salt) == a {
				t.Error("InstanceAddress() collided for different inputs")
			}
		})
	}
}

func TestInstantiate(t *testing.T) {
	ctx := context.Background()
	h := New(nil, nil)
	h.Register(counterCode, counterFactory)

	inst, err := h.Instantiate(ctx, InstantiateParams{
		Deployer:  "deployer",
		Code:      counterCode,
		Endowment: 0,
		Salt:      testSalt,
	})
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}
	if want := InstanceAddress("deployer", counterCode, testSalt); inst.Address != want {
		t.Errorf("Instantiate() address = %s, want %s", inst.Address, want)
	}

	c, err := Ref[*counter](inst)
	if err != nil {
		t.Fatalf("Ref() error = %v", err)
	}
	if c.env.Address != inst.Address || c.env.Deployer != "deployer" || c.env.Host != h {
		t.Errorf("factory env = %+v", c.env)
	}
	if c.env.Store == nil {
		t.Error("factory env has no store")
	}

	got, ok := h.Lookup(inst.Address)
	if !ok || got.Address != inst.Address {
		t.Errorf("Lookup() = %+v, %v", got, ok)
	}
}

func TestInstantiateErrors(t *testing.T) {
	ctx := context.Background()
	h := New(nil, nil)
	h.Register(counterCode, counterFactory)

	params := InstantiateParams{Deployer: "deployer", Code: counterCode, Salt: testSalt}
	if _, err := h.Instantiate(ctx, params); err != nil {
		t.Fatalf("first Instantiate() error = %v", err)
	}

	tests := []struct {
		name    string
		params  InstantiateParams
		wantErr error
	}{
		{"same salt twice", params, ErrAlreadyInstantiated},
		{"unknown code", InstantiateParams{Deployer: "deployer", Code: HashCode("missing"), Salt: testSalt}, ErrCodeNotFound},
		{"negative endowment", InstantiateParams{Deployer: "deployer", Code: counterCode, Endowment: -1, Salt: []byte{1}}, ErrNegativeEndowment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.Instantiate(ctx, tt.params)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Instantiate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNestedInstantiation(t *testing.T) {
	ctx := context.Background()
	h := New(nil, nil)
	h.Register(counterCode, counterFactory)

	parentCode := HashCode("test/parent")
	h.Register(parentCode, func(ctx context.Context, env Env) (any, error) {
		child, err := env.Host.Instantiate(ctx, InstantiateParams{
			Deployer: env.Address,
			Code:     counterCode,
			Salt:     testSalt,
		})
		if err != nil {
			return nil, err
		}
		return child.Address, nil
	})

	parent, err := h.Instantiate(ctx, InstantiateParams{Deployer: "root", Code: parentCode})
	if err != nil {
		t.Fatalf("Instantiate() error = %v", err)
	}
	childAddr, err := Ref[models.Address](parent)
	if err != nil {
		t.Fatalf("Ref() error = %v", err)
	}
	if want := InstanceAddress(parent.Address, counterCode, testSalt); childAddr != want {
		t.Errorf("child address = %s, want %s", childAddr, want)
	}
	if _, ok := h.Lookup(childAddr); !ok {
		t.Error("child instance not registered")
	}
}

func TestFailedFactoryReleasesAddress(t *testing.T) {
	ctx := context.Background()
	h := New(nil, nil)
	boom := errors.New("boom")
	failing := true
	code := HashCode("test/flaky")
	h.Register(code, func(ctx context.Context, env Env) (any, error) {
		if failing {
			return nil, boom
		}
		return &counter{env: env}, nil
	})

	params := InstantiateParams{Deployer: "deployer", Code: code, Salt: testSalt}
	if _, err := h.Instantiate(ctx, params); !errors.Is(err, boom) {
		t.Fatalf("Instantiate() error = %v, want %v", err, boom)
	}
	if _, ok := h.Lookup(InstanceAddress("deployer", code, testSalt)); ok {
		t.Error("failed instance is registered")
	}

	failing = false
	if _, err := h.Instantiate(ctx, params); err != nil {
		t.Errorf("retry Instantiate() error = %v", err)
	}
}

func TestRefTypeMismatch(t *testing.T) {
	_, err := Ref[*counter](Instance{Address: "x", Ref: "not a counter"})
	if !errors.Is(err, ErrRefType) {
		t.Errorf("Ref() error = %v, want %v", err, ErrRefType)
	}
}
