// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package aggregator implements the profile aggregator.

An Aggregator keeps a profile registry keyed by unique username and holds the
single poll engine it instantiated at construction. The engine reference is
set once and never replaced; callers reach poll operations through
PollEngine().

Profiles are not linked to engine user records. One address may own several
profiles, and each profile keeps at most models.ProfileListCapacity entries
of experience and skills, copied in input order.
*/
package aggregator
