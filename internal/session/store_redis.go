// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package session

import (
	stdctx "context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/minhvhoang/edugate/internal/platform/constants"
)

// # Redis Session Store

// RedisStore implements Store using Redis as the durable backend.
//
// Entries are written without TTL; session lifetime is governed by the
// authority rejecting stale tokens, not by local expiry.
type RedisStore struct {
	client *redis.Client
	scope  string
}

// NewRedisStore creates a new Redis-backed session store.
//
// # Parameters
//   - client: Connected Redis client.
//   - scope: Namespace suffix isolating this console's session entries.
func NewRedisStore(client *redis.Client, scope string) *RedisStore {
	return &RedisStore{client: client, scope: scope}
}

// tokenKey returns the Redis key holding the bearer token.
func (store *RedisStore) tokenKey() string {
	return fmt.Sprintf("%s%s:%s", constants.SessionKeyPrefix, store.scope, constants.SessionTokenEntry)
}

// userKey returns the Redis key holding the serialized profile.
func (store *RedisStore) userKey() string {
	return fmt.Sprintf("%s%s:%s", constants.SessionKeyPrefix, store.scope, constants.SessionUserEntry)
}

/*
GetToken returns the stored bearer token.

Parameters:
  - context: context.Context

Returns:
  - string: Raw bearer token ("" when absent)
  - error: Connectivity failures
*/
func (store *RedisStore) GetToken(context stdctx.Context) (string, error) {

	// Fetch the token entry from Redis
	token, err := store.client.Get(context, store.tokenKey()).Result()

	// A missing key means no session, not an error
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", fmt.Errorf("session_token_get_failed: %w", err)
	}

	return token, nil
}

/*
SetToken persists the bearer token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - error: Persistence failures
*/
func (store *RedisStore) SetToken(context stdctx.Context, token string) error {

	// Persist without TTL; lifetime is decided by the authority
	if err := store.client.Set(context, store.tokenKey(), token, 0).Err(); err != nil {
		return fmt.Errorf("session_token_set_failed: %w", err)
	}

	return nil
}

/*
ClearToken removes the stored bearer token.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence failures
*/
func (store *RedisStore) ClearToken(context stdctx.Context) error {

	// DEL on an absent key is a harmless no-op
	if err := store.client.Del(context, store.tokenKey()).Err(); err != nil {
		return fmt.Errorf("session_token_clear_failed: %w", err)
	}

	return nil
}

/*
GetUser returns the stored operator profile.

Description: A payload that cannot be decoded is treated as absent. The stored
entry is the only casualty of corruption; callers never see a decode error.

Parameters:
  - context: context.Context

Returns:
  - *Profile: Decoded profile (nil when absent or corrupt)
  - error: Connectivity failures
*/
func (store *RedisStore) GetUser(context stdctx.Context) (*Profile, error) {

	// Fetch the serialized profile entry from Redis
	payload, err := store.client.Get(context, store.userKey()).Bytes()

	// A missing key means no profile, not an error
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("session_user_get_failed: %w", err)
	}

	// Decode fail-soft: corrupt payloads read as "no profile stored"
	var profile Profile
	if err := json.Unmarshal(payload, &profile); err != nil {
		return nil, nil
	}

	return &profile, nil
}

/*
SetUser persists the operator profile as JSON.

Parameters:
  - context: context.Context
  - profile: *Profile

Returns:
  - error: Serialization or persistence failures
*/
func (store *RedisStore) SetUser(context stdctx.Context, profile *Profile) error {

	// Serialize the profile snapshot
	payload, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("session_user_encode_failed: %w", err)
	}

	// Persist without TTL
	if err := store.client.Set(context, store.userKey(), payload, 0).Err(); err != nil {
		return fmt.Errorf("session_user_set_failed: %w", err)
	}

	return nil
}

/*
ClearUser removes the stored profile.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence failures
*/
func (store *RedisStore) ClearUser(context stdctx.Context) error {

	// DEL on an absent key is a harmless no-op
	if err := store.client.Del(context, store.userKey()).Err(); err != nil {
		return fmt.Errorf("session_user_clear_failed: %w", err)
	}

	return nil
}

/*
IsAuthenticated reports whether a bearer token is currently stored.

Parameters:
  - context: context.Context

Returns:
  - bool: true when a token is stored
  - error: Connectivity failures
*/
func (store *RedisStore) IsAuthenticated(context stdctx.Context) (bool, error) {

	// EXISTS counts how many of the given keys are present
	count, err := store.client.Exists(context, store.tokenKey()).Result()
	if err != nil {
		return false, fmt.Errorf("session_token_exists_failed: %w", err)
	}

	return count > 0, nil
}
