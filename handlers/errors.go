// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/mattjhawken/nexus/aggregator"
	"github.com/mattjhawken/nexus/auth"
	"github.com/mattjhawken/nexus/engine"
	"github.com/mattjhawken/nexus/middleware"
)

// StatusFor maps an engine or aggregator error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, auth.ErrNoCaller), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrUserNotRegistered), errors.Is(err, engine.ErrNotPollAuthor):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrPollNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrUserAlreadyResponded),
		errors.Is(err, engine.ErrPollClosed),
		errors.Is(err, aggregator.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, engine.ErrTaskRewardTooLow):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Internal failures are logged
// and reported with the fallback message only.
func writeError(w http.ResponseWriter, err error, fallback string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error(fallback, "error", err)
		middleware.ErrorResponse(w, status, fallback)
		return
	}
	middleware.ErrorResponse(w, status, err.Error())
}
