// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package aggregator

import "errors"

var (
	ErrUsernameTaken = errors.New("username already taken")
)
