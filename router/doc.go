// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the nexus API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(agg, cfg)

# Endpoints

Health:

	GET /health

Identities:

	POST /identities - Issue an address and caller token

Poll engine (mutations require X-Caller-Token):

	POST /users                  - Register or rename the caller
	GET  /users/{address}        - Look up a registered user
	POST /polls                  - Create poll
	GET  /polls/{id}             - Poll record
	POST /polls/{id}/responses   - Respond once
	POST /polls/{id}/close       - Close (author only)

Aggregator:

	POST /profiles            - Claim a username profile (requires X-Caller-Token)
	GET  /profiles/{username} - Look up a profile

# Handler Initialization

Poll routes are served from the engine the aggregator holds:

	pollHandler := handlers.NewPollHandler(agg.PollEngine())
	profileHandler := handlers.NewProfileHandler(agg)
*/
package router
