// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package session

import "context"

// # Durable Session Access

// Store defines the durable storage contract for the operator session.
//
// Implementations must be fail-soft on corrupt profile payloads: a stored user
// entry that cannot be decoded is treated as absent, never as an error.
type Store interface {

	/*
		GetToken returns the stored bearer token, or "" if none is stored.

		Parameters:
		  - context: context.Context

		Returns:
		  - string: Raw bearer token ("" when absent)
		  - error: Storage connectivity failures
	*/
	GetToken(context context.Context) (string, error)

	/*
		SetToken persists the bearer token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	SetToken(context context.Context, token string) error

	/*
		ClearToken removes the stored bearer token. Clearing an absent token is a no-op.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	ClearToken(context context.Context) error

	/*
		GetUser returns the stored operator profile, or nil if none is stored
		or the stored payload cannot be decoded.

		Parameters:
		  - context: context.Context

		Returns:
		  - *Profile: Decoded profile (nil when absent or corrupt)
		  - error: Storage connectivity failures
	*/
	GetUser(context context.Context) (*Profile, error)

	/*
		SetUser persists the operator profile as JSON.

		Parameters:
		  - context: context.Context
		  - profile: *Profile

		Returns:
		  - error: Serialization or persistence failures
	*/
	SetUser(context context.Context, profile *Profile) error

	/*
		ClearUser removes the stored profile. Clearing an absent profile is a no-op.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	ClearUser(context context.Context) error

	/*
		IsAuthenticated reports whether a bearer token is currently stored.

		Description: Presence of the token alone decides the answer; the
		profile entry is not consulted.

		Parameters:
		  - context: context.Context

		Returns:
		  - bool: true when a token is stored
		  - error: Storage connectivity failures
	*/
	IsAuthenticated(context context.Context) (bool, error)
}
