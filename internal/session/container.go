// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package session

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"sync"
)

// # Session Container

// Container owns the in-process session state for the gateway.
//
// It is the single writer of session state. Readers see the state through the
// [State] interface; all mutations go through SetCredentials and ClearSession,
// which write the durable store first and the in-memory copy second so a crash
// between the two never leaves memory ahead of storage.
type Container struct {
	mu     sync.RWMutex
	store  Store
	logger *slog.Logger

	initialized bool
	token       string
	user        *Profile
}

// NewContainer creates a session container backed by the given durable store.
//
// # Parameters
//   - store: Durable session storage.
//   - logger: Structured logger for lifecycle events.
func NewContainer(store Store, logger *slog.Logger) *Container {
	return &Container{store: store, logger: logger}
}

// # Lifecycle

/*
Init seeds the in-memory state from durable storage.

Description: The stored token is trusted as-is; no validation call is made to
the authority. A stale token surfaces naturally as a 401 on the first outbound
request. If storage holds only half a session (token without profile, or
profile without token), both halves are cleared and the gateway starts signed
out.

Parameters:
  - context: context.Context

Returns:
  - error: Storage connectivity failures
*/
func (container *Container) Init(context stdctx.Context) error {
	container.mu.Lock()
	defer container.mu.Unlock()

	if container.initialized {
		return nil
	}

	// 1. Read both durable entries
	token, err := container.store.GetToken(context)
	if err != nil {
		return fmt.Errorf("session_init_failed: %w", err)
	}

	user, err := container.store.GetUser(context)
	if err != nil {
		return fmt.Errorf("session_init_failed: %w", err)
	}

	// 2. Repair a half-session: the pairing invariant must hold
	if (token == "") != (user == nil) {
		container.logger.Warn("session_repair_cleared_partial_state",
			slog.Bool("had_token", token != ""),
			slog.Bool("had_user", user != nil),
		)

		if err := container.store.ClearToken(context); err != nil {
			return fmt.Errorf("session_init_failed: %w", err)
		}
		if err := container.store.ClearUser(context); err != nil {
			return fmt.Errorf("session_init_failed: %w", err)
		}

		token = ""
		user = nil
	}

	// 3. Seed memory with whatever survived
	container.token = token
	container.user = user
	container.initialized = true

	container.logger.Info("session_container_initialized",
		slog.Bool("authenticated", token != ""),
	)

	return nil
}

/*
Dispose releases the container at shutdown.

Description: In-memory state is dropped; durable entries are left untouched so
the session survives the restart.

Returns:
  - error: Always nil; kept for symmetry with Init
*/
func (container *Container) Dispose() error {
	container.mu.Lock()
	defer container.mu.Unlock()

	container.token = ""
	container.user = nil
	container.initialized = false

	return nil
}

// # Mutations

/*
SetCredentials establishes a full session from a successful login.

Description: Durable storage is written first, memory second. A storage
failure leaves the previous session intact in memory.

Parameters:
  - context: context.Context
  - token: string
  - user: *Profile

Returns:
  - error: Persistence failures
*/
func (container *Container) SetCredentials(context stdctx.Context, token string, user *Profile) error {
	container.mu.Lock()
	defer container.mu.Unlock()

	// 1. Persist both halves durably
	if err := container.store.SetToken(context, token); err != nil {
		return fmt.Errorf("session_set_failed: %w", err)
	}

	if err := container.store.SetUser(context, user); err != nil {
		// Roll the token back so storage never holds a half-session
		_ = container.store.ClearToken(context)
		return fmt.Errorf("session_set_failed: %w", err)
	}

	// 2. Update the in-memory copy
	container.token = token
	container.user = user

	return nil
}

/*
ClearSession removes the session from storage and memory.

Description: Idempotent; clearing an absent session succeeds silently.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence failures
*/
func (container *Container) ClearSession(context stdctx.Context) error {
	container.mu.Lock()
	defer container.mu.Unlock()

	// 1. Clear durable storage first
	if err := container.store.ClearToken(context); err != nil {
		return fmt.Errorf("session_clear_failed: %w", err)
	}

	if err := container.store.ClearUser(context); err != nil {
		return fmt.Errorf("session_clear_failed: %w", err)
	}

	// 2. Drop the in-memory copy
	container.token = ""
	container.user = nil

	return nil
}

// # Read Side

// Token returns the current bearer token, or "" if signed out.
func (container *Container) Token() string {
	container.mu.RLock()
	defer container.mu.RUnlock()

	return container.token
}

// CurrentUser returns a copy of the operator profile, or nil if signed out.
func (container *Container) CurrentUser() *Profile {
	container.mu.RLock()
	defer container.mu.RUnlock()

	if container.user == nil {
		return nil
	}

	// Copy so callers cannot mutate container state
	snapshot := *container.user
	if container.user.Permissions != nil {
		snapshot.Permissions = append([]string(nil), container.user.Permissions...)
	}

	return &snapshot
}

// IsAuthenticated reports whether a full session is present.
func (container *Container) IsAuthenticated() bool {
	container.mu.RLock()
	defer container.mu.RUnlock()

	return container.token != "" && container.user != nil
}
