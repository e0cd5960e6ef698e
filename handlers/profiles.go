// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/mattjhawken/nexus/aggregator"
	"github.com/mattjhawken/nexus/middleware"
	"github.com/mattjhawken/nexus/models"
)

type ProfileHandler struct {
	agg *aggregator.Aggregator
}

func NewProfileHandler(agg *aggregator.Aggregator) *ProfileHandler {
	return &ProfileHandler{agg: agg}
}

// CreateProfile handles POST /profiles
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}

	profile, err := h.agg.CreateProfile(r.Context(), req.Username, req.Experience, req.Skills)
	if err != nil {
		writeError(w, err, "Failed to create profile")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, profile)
}

// GetProfile handles GET /profiles/{username}
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if username == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "username is required")
		return
	}

	profile, found, err := h.agg.GetProfile(r.Context(), username)
	if err != nil {
		writeError(w, err, "Failed to load profile")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Profile not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, profile)
}
