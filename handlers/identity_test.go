// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mattjhawken/nexus/auth"
	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/testutil"
)

func TestCreateIdentity(t *testing.T) {
	cfg := testutil.GetTestConfig()
	handler := NewIdentityHandler(cfg)

	seen := make(map[models.Address]bool)
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		handler.CreateIdentity(w, testutil.MakeRequest("POST", "/identities", nil, nil))

		testutil.AssertStatus(t, w, http.StatusCreated)
		var resp models.IdentityResponse
		testutil.AssertJSON(t, w, &resp)

		if len(resp.Address) != 40 {
			t.Errorf("Expected 40 hex chars, got %q", resp.Address)
		}
		if seen[resp.Address] {
			t.Errorf("Address %s issued twice", resp.Address)
		}
		seen[resp.Address] = true

		resolved, err := auth.ResolveCallerToken(resp.CallerToken, cfg.CallerTokenSalt)
		if err != nil || resolved != resp.Address {
			t.Errorf("Token resolves to %s, %v; want %s", resolved, err, resp.Address)
		}
	}
}
