// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - RegisterUserRequest: username
  - CreatePollRequest: title, description, reward
  - RespondToPollRequest: response
  - CreateProfileRequest: username, experience, skills

# Response Types

Types for JSON responses:

  - IdentityResponse: address, caller_token
  - CreatePollResponse: poll_id, poll
  - ErrorResponse: error, message

# Domain Types

Records owned by the poll engine and the aggregator:

  - PollRecord: a task with reward, author, open flag, and responses
  - RegisteredUser: poll engine user, keyed by address
  - Profile: aggregator profile, keyed by username

Responses and Participants of a PollRecord are index-aligned: the i-th
response was submitted by the i-th participant.

# Constants

Profile list capacity:

	ProfileListCapacity = 10
*/
package models
