// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "errors"

var (
	ErrUserNotRegistered    = errors.New("caller is not a registered user")
	ErrPollNotFound         = errors.New("poll not found")
	ErrUserAlreadyResponded = errors.New("user already responded to poll")
	ErrNotPollAuthor        = errors.New("caller is not the poll author")
	ErrPollClosed           = errors.New("poll is closed")
	ErrTaskRewardTooLow     = errors.New("task reward too low")
)
