// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/mattjhawken/nexus/auth"
	"github.com/mattjhawken/nexus/cliparse"
	"github.com/mattjhawken/nexus/middleware"
	"github.com/mattjhawken/nexus/models"
)

type IdentityHandler struct {
	cfg cliparse.Config
}

func NewIdentityHandler(cfg cliparse.Config) *IdentityHandler {
	return &IdentityHandler{cfg: cfg}
}

// CreateIdentity handles POST /identities
func (h *IdentityHandler) CreateIdentity(w http.ResponseWriter, r *http.Request) {
	address, err := auth.GenerateAddress()
	if err != nil {
		slog.Error("failed to generate address", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create identity")
		return
	}

	slog.Info("identity issued", "address", address)

	middleware.JSONResponse(w, http.StatusCreated, models.IdentityResponse{
		Address:     address,
		CallerToken: auth.IssueCallerToken(address, h.cfg.CallerTokenSalt),
	})
}
