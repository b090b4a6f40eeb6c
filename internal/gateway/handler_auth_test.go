// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package gateway_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvhoang/edugate/internal/audit"
	"github.com/minhvhoang/edugate/internal/authority"
	"github.com/minhvhoang/edugate/internal/authority/authoritytest"
	"github.com/minhvhoang/edugate/internal/gateway"
	"github.com/minhvhoang/edugate/internal/platform/config"
	"github.com/minhvhoang/edugate/internal/platform/constants"
	"github.com/minhvhoang/edugate/internal/records"
	"github.com/minhvhoang/edugate/internal/session"
)

// memoryAuditRepository collects audit events in memory for assertions.
type memoryAuditRepository struct {
	mu     sync.Mutex
	events []audit.Event
}

func (repository *memoryAuditRepository) Append(_ context.Context, event *audit.Event) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	repository.events = append(repository.events, *event)
	return nil
}

func (repository *memoryAuditRepository) List(_ context.Context, limit, offset int) ([]audit.Event, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	total := len(repository.events)
	if offset >= total {
		return nil, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]audit.Event, end-offset)
	copy(page, repository.events[offset:end])
	return page, total, nil
}

func (repository *memoryAuditRepository) eventTypes() []string {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	types := make([]string, 0, len(repository.events))
	for _, event := range repository.events {
		types = append(types, event.EventType)
	}
	return types
}

// consoleHarness is a fully wired gateway over the authority simulator.
type consoleHarness struct {
	router    http.Handler
	container *session.Container
	audits    *memoryAuditRepository
	upstream  *httptest.Server
}

// newConsole builds the full gateway stack backed by in-memory storage and
// the in-process authority.
func newConsole(t *testing.T) *consoleHarness {
	t.Helper()

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	upstream := httptest.NewServer(authoritytest.New("test-signing-key").Handler())
	t.Cleanup(upstream.Close)

	container := session.NewContainer(session.NewMemoryStore(), logger)
	require.NoError(t, container.Init(context.Background()))
	t.Cleanup(func() { _ = container.Dispose() })

	audits := &memoryAuditRepository{}
	recorder := audit.NewRecorder(audits, logger)

	client := authority.NewClient(upstream.URL, container, logger)
	client.SetUnauthorizedHook(func(actor string) {
		recorder.Record(audit.EventSessionExpired, actor, "bearer rejected by authority", "")
	})

	service := authority.NewService(client, container, "/auth/login", logger)

	liveness, readiness := gateway.NewHealthHandlers(gateway.HealthDependencies{}, logger)

	cfg := &config.Config{
		GatewayPort: "0",
		Environment: "development",
	}

	server := gateway.NewServer(context.Background(), cfg, logger, container, gateway.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      gateway.NewAuthHandler(service, recorder, container),
		Records:   records.NewHandler(client),
		Audit:     audit.NewHandler(recorder),
	})

	return &consoleHarness{
		router:    server.Router(),
		container: container,
		audits:    audits,
		upstream:  upstream,
	}
}

// do runs one request through the gateway router.
func (harness *consoleHarness) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(method, path, reader)
	harness.router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestConsole_SignInFlow verifies the full sign-in path: seeded credentials are
accepted, the session is established, and the trail records the event.
*/
func TestConsole_SignInFlow(t *testing.T) {
	harness := newConsole(t)

	response := harness.do(http.MethodPost, "/login", `{"username": "DEV0001", "password": "password123"}`)
	require.Equal(t, http.StatusOK, response.Code)

	var envelope struct {
		Data session.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(response.Body.Bytes(), &envelope))

	assert.Equal(t, "admin", envelope.Data.Role)
	assert.Equal(t, "Dev Admin", envelope.Data.DisplayName)
	assert.True(t, harness.container.IsAuthenticated())

	assert.Contains(t, harness.audits.eventTypes(), audit.EventLoginSucceeded)
}

/*
TestConsole_SignInRejected verifies that a wrong password yields 401 with the
authority's message, leaves the console signed out, and lands in the trail.
*/
func TestConsole_SignInRejected(t *testing.T) {
	harness := newConsole(t)

	response := harness.do(http.MethodPost, "/login", `{"username": "DEV0001", "password": "wrong-secret"}`)
	require.Equal(t, http.StatusUnauthorized, response.Code)
	assert.Contains(t, response.Body.String(), "Invalid login credentials")

	assert.False(t, harness.container.IsAuthenticated())
	assert.Contains(t, harness.audits.eventTypes(), audit.EventLoginFailed)
}

/*
TestConsole_GuardMatrix verifies navigation gating at the router level for
both session states.
*/
func TestConsole_GuardMatrix(t *testing.T) {
	harness := newConsole(t)

	// 1. Signed out: protected surface redirects to login, without a return path
	response := harness.do(http.MethodGet, "/api/v1/students", "")
	require.Equal(t, http.StatusSeeOther, response.Code)
	assert.Equal(t, constants.LoginPath, response.Header().Get("Location"))

	// 2. Signed out: the login surface answers normally
	response = harness.do(http.MethodGet, constants.LoginPath, "")
	assert.Equal(t, http.StatusOK, response.Code)

	// 3. Sign in
	response = harness.do(http.MethodPost, "/login", `{"username": "DEV0001", "password": "password123"}`)
	require.Equal(t, http.StatusOK, response.Code)

	// 4. Signed in: protected surface serves records
	response = harness.do(http.MethodGet, "/api/v1/students", "")
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "ADM-2031")

	// 5. Signed in: the login surface redirects to the landing page
	response = harness.do(http.MethodGet, constants.LoginPath, "")
	require.Equal(t, http.StatusSeeOther, response.Code)
	assert.Equal(t, constants.DefaultLandingPath, response.Header().Get("Location"))
}

/*
TestConsole_ProfileRoundTrip verifies that GET /api/v1/profile reflects the
authority's view of the signed-in operator.
*/
func TestConsole_ProfileRoundTrip(t *testing.T) {
	harness := newConsole(t)

	response := harness.do(http.MethodPost, "/login", `{"username": "ADM0001", "password": "admin123"}`)
	require.Equal(t, http.StatusOK, response.Code)

	response = harness.do(http.MethodGet, "/api/v1/profile", "")
	require.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), "admin@school.com")
}

/*
TestConsole_ExpiredTokenEndsSession verifies the end-to-end 401 policy: a
bearer the authority no longer accepts ends the local session on the next
upstream call, and the expiry is audited once.
*/
func TestConsole_ExpiredTokenEndsSession(t *testing.T) {
	harness := newConsole(t)

	response := harness.do(http.MethodPost, "/login", `{"username": "DEV0001", "password": "password123"}`)
	require.Equal(t, http.StatusOK, response.Code)

	// Corrupt the stored token to simulate server-side invalidation
	require.NoError(t, harness.container.SetCredentials(context.Background(), "no-longer-valid", harness.container.CurrentUser()))

	response = harness.do(http.MethodGet, "/api/v1/students", "")
	assert.Equal(t, http.StatusUnauthorized, response.Code)
	assert.False(t, harness.container.IsAuthenticated())

	expiredCount := 0
	for _, eventType := range harness.audits.eventTypes() {
		if eventType == audit.EventSessionExpired {
			expiredCount++
		}
	}
	assert.Equal(t, 1, expiredCount)

	// The next navigation is gated back to login
	response = harness.do(http.MethodGet, "/api/v1/students", "")
	assert.Equal(t, http.StatusSeeOther, response.Code)
}

/*
TestConsole_LogoutIsIdempotent verifies that sign-out returns 204, clears the
session, and stays 204 when repeated.
*/
func TestConsole_LogoutIsIdempotent(t *testing.T) {
	harness := newConsole(t)

	response := harness.do(http.MethodPost, "/login", `{"username": "DEV0001", "password": "password123"}`)
	require.Equal(t, http.StatusOK, response.Code)

	response = harness.do(http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusNoContent, response.Code)
	assert.False(t, harness.container.IsAuthenticated())

	// Repeat while signed out
	response = harness.do(http.MethodPost, "/logout", "")
	assert.Equal(t, http.StatusNoContent, response.Code)

	// Only the sign-out that ended a session is recorded
	logoutCount := 0
	for _, eventType := range harness.audits.eventTypes() {
		if eventType == audit.EventLogout {
			logoutCount++
		}
	}
	assert.Equal(t, 1, logoutCount)
}

/*
TestConsole_AuditTrailIsServed verifies that recorded events are readable
through the protected audit endpoint.
*/
func TestConsole_AuditTrailIsServed(t *testing.T) {
	harness := newConsole(t)

	response := harness.do(http.MethodPost, "/login", `{"username": "DEV0001", "password": "password123"}`)
	require.Equal(t, http.StatusOK, response.Code)

	response = harness.do(http.MethodGet, "/api/v1/audit?limit=10", "")
	require.Equal(t, http.StatusOK, response.Code)
	assert.Contains(t, response.Body.String(), audit.EventLoginSucceeded)
	assert.Contains(t, response.Body.String(), `"meta"`)
}

/*
TestConsole_HealthProbes verifies the unauthenticated infrastructure
endpoints.
*/
func TestConsole_HealthProbes(t *testing.T) {
	harness := newConsole(t)

	response := harness.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, response.Code)

	response = harness.do(http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, response.Code)
}
