// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package deploy wires the poll engine and the aggregator onto a host.
package deploy
