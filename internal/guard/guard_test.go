// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package guard_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvhoang/edugate/internal/guard"
	"github.com/minhvhoang/edugate/internal/platform/constants"
	"github.com/minhvhoang/edugate/internal/session"
)

// testLogger returns a silent logger for test runs.
func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// newContainer builds an initialized container, optionally signed in.
func newContainer(t *testing.T, signedIn bool) *session.Container {
	t.Helper()

	container := session.NewContainer(session.NewMemoryStore(), testLogger())
	require.NoError(t, container.Init(context.Background()))

	if signedIn {
		require.NoError(t, container.SetCredentials(context.Background(), "live-token", &session.Profile{
			Username: "DEV0001",
			Role:     "admin",
		}))
	}

	return container
}

// okHandler marks that the request passed the gate.
func okHandler(passed *bool) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*passed = true
		writer.WriteHeader(http.StatusOK)
	})
}

/*
TestGuard_NavigationMatrix verifies all four combinations of session state and
surface kind.
*/
func TestGuard_NavigationMatrix(t *testing.T) {
	testCases := []struct {
		name             string
		signedIn         bool
		gate             func(session.State) func(http.Handler) http.Handler
		requestPath      string
		expectPassed     bool
		expectRedirectTo string
	}{
		{
			name:             "signed out on protected surface redirects to login",
			signedIn:         false,
			gate:             guard.Protect,
			requestPath:      "/api/v1/students",
			expectPassed:     false,
			expectRedirectTo: constants.LoginPath,
		},
		{
			name:         "signed in on protected surface passes",
			signedIn:     true,
			gate:         guard.Protect,
			requestPath:  "/api/v1/students",
			expectPassed: true,
		},
		{
			name:             "signed in on login surface redirects to landing",
			signedIn:         true,
			gate:             guard.RedirectAuthenticated,
			requestPath:      constants.LoginPath,
			expectPassed:     false,
			expectRedirectTo: constants.DefaultLandingPath,
		},
		{
			name:         "signed out on login surface passes",
			signedIn:     false,
			gate:         guard.RedirectAuthenticated,
			requestPath:  constants.LoginPath,
			expectPassed: true,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			container := newContainer(t, testCase.signedIn)

			passed := false
			handler := testCase.gate(container)(okHandler(&passed))

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, testCase.requestPath, nil)
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, testCase.expectPassed, passed)

			if testCase.expectRedirectTo != "" {
				assert.Equal(t, http.StatusSeeOther, recorder.Code)
				assert.Equal(t, testCase.expectRedirectTo, recorder.Header().Get("Location"))
			}
		})
	}
}

/*
TestGuard_RedirectDiscardsDestination verifies that the login redirect carries
no trace of the originally requested path.
*/
func TestGuard_RedirectDiscardsDestination(t *testing.T) {
	container := newContainer(t, false)

	passed := false
	handler := guard.Protect(container)(okHandler(&passed))

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/api/v1/staff?page=3", nil)
	handler.ServeHTTP(recorder, request)

	location := recorder.Header().Get("Location")
	assert.Equal(t, constants.LoginPath, location)
	assert.NotContains(t, location, "staff")
	assert.NotContains(t, location, "return")
}

/*
TestGuard_TrustsLocalStateOnly verifies that the gate consults only in-process
state: a session seeded from storage passes without any network activity.
*/
func TestGuard_TrustsLocalStateOnly(t *testing.T) {
	store := session.NewMemoryStore()
	ctx := context.Background()

	// A previous process left a session behind
	require.NoError(t, store.SetToken(ctx, "stale-but-trusted"))
	require.NoError(t, store.SetUser(ctx, &session.Profile{Username: "DEV0001", Role: "admin"}))

	container := session.NewContainer(store, testLogger())
	require.NoError(t, container.Init(ctx))

	passed := false
	handler := guard.Protect(container)(okHandler(&passed))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/students", nil))

	assert.True(t, passed)
}
