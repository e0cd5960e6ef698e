// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"strconv"

	"github.com/mattjhawken/nexus/aggregator"
	"github.com/mattjhawken/nexus/middleware"
	"github.com/mattjhawken/nexus/models"
)

// PollHandler serves the poll engine. The caller is expected in the request
// context (see middleware.WithCaller) for every mutating route.
type PollHandler struct {
	engine aggregator.PollEngine
}

func NewPollHandler(engine aggregator.PollEngine) *PollHandler {
	return &PollHandler{engine: engine}
}

// RegisterUser handles POST /users
func (h *PollHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.engine.RegisterUser(r.Context(), req.Username)
	if err != nil {
		writeError(w, err, "Failed to register user")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// GetUser handles GET /users/{address}
func (h *PollHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "address is required")
		return
	}

	user, found, err := h.engine.GetUser(r.Context(), models.Address(address))
	if err != nil {
		writeError(w, err, "Failed to load user")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.engine.CreatePoll(r.Context(), req.Title, req.Description, req.Reward)
	if err != nil {
		writeError(w, err, "Failed to create poll")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: poll.ID,
		Poll:   poll,
	})
}

// GetPoll handles GET /polls/{id}
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	poll, found, err := h.engine.GetPoll(r.Context(), pollID)
	if err != nil {
		writeError(w, err, "Failed to load poll")
		return
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// RespondToPoll handles POST /polls/{id}/responses
func (h *PollHandler) RespondToPoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	var req models.RespondToPollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	poll, err := h.engine.RespondToPoll(r.Context(), pollID, req.Response)
	if err != nil {
		writeError(w, err, "Failed to record response")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// ClosePoll handles POST /polls/{id}/close
func (h *PollHandler) ClosePoll(w http.ResponseWriter, r *http.Request) {
	pollID, ok := parsePollID(w, r)
	if !ok {
		return
	}

	poll, err := h.engine.ClosePoll(r.Context(), pollID)
	if err != nil {
		writeError(w, err, "Failed to close poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

func parsePollID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	if raw == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id is required")
		return 0, false
	}
	pollID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || pollID < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll_id must be a non-negative integer")
		return 0, false
	}
	return pollID, true
}
