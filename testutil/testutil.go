// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mattjhawken/nexus/aggregator"
	"github.com/mattjhawken/nexus/auth"
	"github.com/mattjhawken/nexus/cliparse"
	"github.com/mattjhawken/nexus/db"
	"github.com/mattjhawken/nexus/deploy"
	"github.com/mattjhawken/nexus/host"
	"github.com/mattjhawken/nexus/models"
	"github.com/mattjhawken/nexus/store/sqlstore"
)

// TestDBURL is the connection string for the test database
const TestDBURL = ":memory:"

// SetupTestDB opens a fresh in-memory sqlite database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.TypeSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:            3318,
		DatabaseURL:     TestDBURL,
		DatabaseType:    db.TypeMemory,
		CallerTokenSalt: "test-caller-salt",
	}
}

// DiscardLogger drops everything written to it
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestAggregator deploys an aggregator and its poll engine on a fresh host.
// A nil open gives every instance its own memory store.
func NewTestAggregator(t *testing.T, open host.StoreOpener, cfg cliparse.Config) *aggregator.Aggregator {
	t.Helper()

	agg, err := deploy.Deploy(context.Background(), open, cfg, DiscardLogger())
	if err != nil {
		t.Fatalf("Failed to deploy aggregator: %v", err)
	}
	return agg
}

// NewSQLTestAggregator is NewTestAggregator backed by a fresh sqlite database
func NewSQLTestAggregator(t *testing.T, cfg cliparse.Config) *aggregator.Aggregator {
	t.Helper()
	return NewTestAggregator(t, sqlstore.Opener(SetupTestDB(t)), cfg)
}

// CreateTestCaller generates an address and the caller token for it
func CreateTestCaller(t *testing.T, cfg cliparse.Config) (models.Address, string) {
	t.Helper()

	address, err := auth.GenerateAddress()
	if err != nil {
		t.Fatalf("Failed to generate address: %v", err)
	}
	return address, auth.IssueCallerToken(address, cfg.CallerTokenSalt)
}

// CreateTestUser registers a fresh caller with the poll engine and returns its
// address and caller token
func CreateTestUser(t *testing.T, agg *aggregator.Aggregator, cfg cliparse.Config, username string) (models.Address, string) {
	t.Helper()

	address, token := CreateTestCaller(t, cfg)
	ctx := auth.ContextWithCaller(context.Background(), address)
	if _, err := agg.PollEngine().RegisterUser(ctx, username); err != nil {
		t.Fatalf("Failed to register test user: %v", err)
	}
	return address, token
}

// CreateTestPoll creates an open poll authored by address and returns its id
func CreateTestPoll(t *testing.T, agg *aggregator.Aggregator, address models.Address, title string) int64 {
	t.Helper()

	ctx := auth.ContextWithCaller(context.Background(), address)
	poll, err := agg.PollEngine().CreatePoll(ctx, title, "A test poll", 1)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}
	return poll.ID
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
