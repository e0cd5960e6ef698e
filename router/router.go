// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/mattjhawken/nexus/aggregator"
	"github.com/mattjhawken/nexus/cliparse"
	"github.com/mattjhawken/nexus/handlers"
	"github.com/mattjhawken/nexus/middleware"
)

func NewRouter(agg *aggregator.Aggregator, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	identityHandler := handlers.NewIdentityHandler(cfg)
	pollHandler := handlers.NewPollHandler(agg.PollEngine())
	profileHandler := handlers.NewProfileHandler(agg)

	// caller wraps handlers that act on behalf of the X-Caller-Token holder
	caller := func(next http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(middleware.WithCaller(cfg.CallerTokenSalt, next))
	}

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Identities
	mux.HandleFunc("POST /identities", middleware.WithLogging(identityHandler.CreateIdentity))

	// Poll engine users
	mux.HandleFunc("POST /users", caller(pollHandler.RegisterUser))
	mux.HandleFunc("GET /users/{address}", middleware.WithLogging(pollHandler.GetUser))

	// Polls
	mux.HandleFunc("POST /polls", caller(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("POST /polls/{id}/responses", caller(pollHandler.RespondToPoll))
	mux.HandleFunc("POST /polls/{id}/close", caller(pollHandler.ClosePoll))

	// Aggregator profiles
	mux.HandleFunc("POST /profiles", caller(profileHandler.CreateProfile))
	mux.HandleFunc("GET /profiles/{username}", middleware.WithLogging(profileHandler.GetProfile))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("nexus API v1"))
	})

	return mux
}
