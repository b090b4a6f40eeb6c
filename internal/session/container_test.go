// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package session

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger returns a silent logger for test runs.
func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// adminProfile returns a representative signed-in operator.
func adminProfile() *Profile {
	return &Profile{
		ID:          "usr-001",
		Username:    "DEV0001",
		Email:       "admin@school.com",
		FirstName:   "Dev",
		LastName:    "Admin",
		DisplayName: "Dev Admin",
		Role:        "admin",
		Permissions: []string{"records:read", "records:write"},
	}
}

/*
TestContainer_RoundTrip verifies that credentials written through the
container are readable back from both memory and durable storage.
*/
func TestContainer_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	container := NewContainer(store, testLogger())
	require.NoError(t, container.Init(ctx))

	// 1. Establish a session
	require.NoError(t, container.SetCredentials(ctx, "token-abc", adminProfile()))

	// 2. In-memory view reflects the session
	assert.True(t, container.IsAuthenticated())
	assert.Equal(t, "token-abc", container.Token())

	user := container.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "DEV0001", user.Username)
	assert.Equal(t, "admin", user.Role)

	// 3. Durable storage holds the same session
	storedToken, err := store.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", storedToken)

	storedUser, err := store.GetUser(ctx)
	require.NoError(t, err)
	require.NotNil(t, storedUser)
	assert.Equal(t, "admin@school.com", storedUser.Email)
}

/*
TestContainer_InitSeedsFromStore verifies trust-on-read: a session already in
durable storage is adopted at startup without authority validation.
*/
func TestContainer_InitSeedsFromStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	// Simulate a previous process having signed in
	require.NoError(t, store.SetToken(ctx, "persisted-token"))
	require.NoError(t, store.SetUser(ctx, adminProfile()))

	container := NewContainer(store, testLogger())
	require.NoError(t, container.Init(ctx))

	assert.True(t, container.IsAuthenticated())
	assert.Equal(t, "persisted-token", container.Token())

	user := container.CurrentUser()
	require.NotNil(t, user)
	assert.Equal(t, "DEV0001", user.Username)
}

/*
TestContainer_InitRepairsHalfSession verifies that a token without a profile
(and the reverse) is cleared from both storage and memory at startup.
*/
func TestContainer_InitRepairsHalfSession(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(t *testing.T, ctx context.Context, store *MemoryStore)
	}{
		{
			name: "token without profile",
			setup: func(t *testing.T, ctx context.Context, store *MemoryStore) {
				require.NoError(t, store.SetToken(ctx, "orphan-token"))
			},
		},
		{
			name: "profile without token",
			setup: func(t *testing.T, ctx context.Context, store *MemoryStore) {
				require.NoError(t, store.SetUser(ctx, adminProfile()))
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			store := NewMemoryStore()
			testCase.setup(t, ctx, store)

			container := NewContainer(store, testLogger())
			require.NoError(t, container.Init(ctx))

			// Memory starts signed out
			assert.False(t, container.IsAuthenticated())
			assert.Empty(t, container.Token())
			assert.Nil(t, container.CurrentUser())

			// Storage was repaired, not just ignored
			storedToken, err := store.GetToken(ctx)
			require.NoError(t, err)
			assert.Empty(t, storedToken)

			storedUser, err := store.GetUser(ctx)
			require.NoError(t, err)
			assert.Nil(t, storedUser)
		})
	}
}

/*
TestContainer_InitToleratesCorruptProfile verifies that an undecodable stored
profile reads as absent and triggers the half-session repair.
*/
func TestContainer_InitToleratesCorruptProfile(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.SetToken(ctx, "token-with-garbage-user"))
	store.injectRawUser([]byte(`{"username": truncated`))

	container := NewContainer(store, testLogger())

	// Init must not fail on the corrupt payload
	require.NoError(t, container.Init(ctx))

	// The corrupt profile reads as nil, so the token is orphaned and cleared
	assert.False(t, container.IsAuthenticated())
	assert.Empty(t, container.Token())
}

/*
TestContainer_ClearSessionIdempotent verifies that clearing an absent session
succeeds and that a second clear after sign-out is a no-op.
*/
func TestContainer_ClearSessionIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	container := NewContainer(store, testLogger())
	require.NoError(t, container.Init(ctx))

	// 1. Clearing with no session present succeeds
	require.NoError(t, container.ClearSession(ctx))
	assert.False(t, container.IsAuthenticated())

	// 2. Establish and clear twice
	require.NoError(t, container.SetCredentials(ctx, "token-abc", adminProfile()))
	require.NoError(t, container.ClearSession(ctx))
	require.NoError(t, container.ClearSession(ctx))

	assert.False(t, container.IsAuthenticated())
	assert.Empty(t, container.Token())
	assert.Nil(t, container.CurrentUser())
}

/*
TestContainer_AuthenticationInvariant verifies that IsAuthenticated, Token,
and CurrentUser always agree across the full lifecycle.
*/
func TestContainer_AuthenticationInvariant(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	container := NewContainer(store, testLogger())
	require.NoError(t, container.Init(ctx))

	checkInvariant := func(stage string) {
		authenticated := container.IsAuthenticated()
		assert.Equal(t, authenticated, container.Token() != "", stage)
		assert.Equal(t, authenticated, container.CurrentUser() != nil, stage)
	}

	checkInvariant("after init")

	require.NoError(t, container.SetCredentials(ctx, "token-abc", adminProfile()))
	checkInvariant("after login")

	require.NoError(t, container.ClearSession(ctx))
	checkInvariant("after logout")
}

/*
TestContainer_CurrentUserReturnsCopy verifies that mutating the returned
profile does not affect container state.
*/
func TestContainer_CurrentUserReturnsCopy(t *testing.T) {
	ctx := context.Background()
	container := NewContainer(NewMemoryStore(), testLogger())
	require.NoError(t, container.Init(ctx))
	require.NoError(t, container.SetCredentials(ctx, "token-abc", adminProfile()))

	snapshot := container.CurrentUser()
	require.NotNil(t, snapshot)

	// Mutate the snapshot aggressively
	snapshot.Role = "intruder"
	snapshot.Permissions[0] = "records:delete"

	fresh := container.CurrentUser()
	require.NotNil(t, fresh)
	assert.Equal(t, "admin", fresh.Role)
	assert.Equal(t, "records:read", fresh.Permissions[0])
}

/*
TestContainer_DisposeDropsMemoryOnly verifies that Dispose clears the
in-process state but leaves durable storage intact for the next start.
*/
func TestContainer_DisposeDropsMemoryOnly(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	container := NewContainer(store, testLogger())
	require.NoError(t, container.Init(ctx))
	require.NoError(t, container.SetCredentials(ctx, "token-abc", adminProfile()))

	require.NoError(t, container.Dispose())
	assert.False(t, container.IsAuthenticated())

	// Durable entries survive
	storedToken, err := store.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "token-abc", storedToken)

	// A fresh container re-adopts the session
	revived := NewContainer(store, testLogger())
	require.NoError(t, revived.Init(ctx))
	assert.True(t, revived.IsAuthenticated())
}

/*
TestDeriveDisplayName verifies the fallback chain for composing a
human-readable operator name.
*/
func TestDeriveDisplayName(t *testing.T) {
	testCases := []struct {
		name     string
		profile  Profile
		expected string
	}{
		{
			name:     "full name preferred",
			profile:  Profile{FirstName: "Dev", LastName: "Admin", Username: "DEV0001", Email: "admin@school.com"},
			expected: "Dev Admin",
		},
		{
			name:     "first name only",
			profile:  Profile{FirstName: "Dev", Username: "DEV0001"},
			expected: "Dev",
		},
		{
			name:     "falls back to username",
			profile:  Profile{Username: "DEV0001", Email: "admin@school.com"},
			expected: "DEV0001",
		},
		{
			name:     "falls back to email",
			profile:  Profile{Email: "admin@school.com"},
			expected: "admin@school.com",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, DeriveDisplayName(&testCase.profile))
		})
	}
}
