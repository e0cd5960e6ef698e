// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth resolves the identity of the calling principal.

# Addresses

Addresses are random 20-byte hex strings:

	addr, err := auth.GenerateAddress()

# Caller Tokens

Caller tokens bind an address to an HMAC-SHA256 signature:

	token := auth.IssueCallerToken(addr, salt)
	addr, err := auth.ResolveCallerToken(token, salt)

The signature is URL-safe base64 encoded without padding. Since it's
deterministic, the same address and salt always produce the same token, so
tokens can be verified without storing them.

# Context

The resolved address travels with the request context:

	ctx = auth.ContextWithCaller(ctx, addr)
	caller, err := auth.CallerFromContext(ctx)

CallerFromContext returns ErrNoCaller when no identity was attached.
*/
package auth
