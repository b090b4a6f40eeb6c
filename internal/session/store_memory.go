// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package session

import (
	stdctx "context"
	"encoding/json"
	"sync"
)

// # In-Memory Session Store

// MemoryStore implements Store entirely in process memory.
//
// It is used by tests and by local development runs that have no Redis. The
// profile is held in its serialized form so the store exhibits the same
// fail-soft decode behavior as the Redis backend.
type MemoryStore struct {
	mu       sync.Mutex
	token    string
	hasToken bool
	user     []byte
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// GetToken returns the stored bearer token, or "" if none is stored.
func (store *MemoryStore) GetToken(_ stdctx.Context) (string, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.token, nil
}

// SetToken persists the bearer token.
func (store *MemoryStore) SetToken(_ stdctx.Context, token string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.token = token
	store.hasToken = true
	return nil
}

// ClearToken removes the stored bearer token.
func (store *MemoryStore) ClearToken(_ stdctx.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.token = ""
	store.hasToken = false
	return nil
}

// GetUser returns the stored profile, or nil when absent or undecodable.
func (store *MemoryStore) GetUser(_ stdctx.Context) (*Profile, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.user == nil {
		return nil, nil
	}

	// Decode fail-soft, matching the Redis backend
	var profile Profile
	if err := json.Unmarshal(store.user, &profile); err != nil {
		return nil, nil
	}

	return &profile, nil
}

// SetUser persists the operator profile as JSON.
func (store *MemoryStore) SetUser(_ stdctx.Context, profile *Profile) error {
	payload, err := json.Marshal(profile)
	if err != nil {
		return err
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.user = payload
	return nil
}

// ClearUser removes the stored profile.
func (store *MemoryStore) ClearUser(_ stdctx.Context) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.user = nil
	return nil
}

// IsAuthenticated reports whether a bearer token is currently stored.
func (store *MemoryStore) IsAuthenticated(_ stdctx.Context) (bool, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	return store.hasToken, nil
}

// injectRawUser overwrites the serialized profile bytes directly.
//
// Test hook for simulating storage corruption.
func (store *MemoryStore) injectRawUser(payload []byte) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.user = payload
}
