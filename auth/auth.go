// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mattjhawken/nexus/models"
)

var (
	ErrInvalidToken = errors.New("invalid caller token")
	ErrNoCaller     = errors.New("no caller identity")
)

// addressLen is the byte length of a generated address
const addressLen = 20

type callerKey struct{}

// GenerateAddress creates a random hex address
func GenerateAddress() (models.Address, error) {
	b := make([]byte, addressLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate address: %w", err)
	}
	return models.Address(hex.EncodeToString(b)), nil
}

// signAddress computes the HMAC of an address
// URL-safe base64 without padding
func signAddress(address models.Address, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(address))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// IssueCallerToken binds an address to a token the resolver can verify
// without storing it: "<address>.<signature>"
func IssueCallerToken(address models.Address, salt string) string {
	return string(address) + "." + signAddress(address, salt)
}

// ResolveCallerToken returns the address a token was issued for
func ResolveCallerToken(token, salt string) (models.Address, error) {
	raw, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || raw == "" || sig == "" {
		return "", ErrInvalidToken
	}
	address := models.Address(raw)
	expected := signAddress(address, salt)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrInvalidToken
	}
	return address, nil
}

// ContextWithCaller attaches the calling principal to ctx
func ContextWithCaller(ctx context.Context, address models.Address) context.Context {
	return context.WithValue(ctx, callerKey{}, address)
}

// CallerFromContext returns the calling principal of the current invocation
func CallerFromContext(ctx context.Context) (models.Address, error) {
	address, ok := ctx.Value(callerKey{}).(models.Address)
	if !ok || address == "" {
		return "", ErrNoCaller
	}
	return address, nil
}
