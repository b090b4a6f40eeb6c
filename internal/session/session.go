// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

/*
Package session implements the operator session lifecycle for the gateway.

It defines the Profile entity, the durable Store contract, and the in-process
Container that owns the authoritative session state while the gateway runs.

# Architecture

The gateway serves a single operator console, so there is exactly one session
per process. The Container is the only writer of session state; the durable
Store (Redis) exists so a gateway restart does not force a fresh sign-in.

# Invariant

A session is either fully present (token and profile) or fully absent. Every
mutation path in this package preserves that pairing, and Container.Init
repairs any half-session it finds in durable storage by clearing both halves.
*/
package session

import "strings"

// # Domain Entities

// Profile represents the signed-in operator as reported by the authority.
type Profile struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	DisplayName string   `json:"display_name"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	Token       string   `json:"token,omitempty"` // Echo of the bearer token some authority builds embed in the profile.
}

// DeriveDisplayName composes a human-readable name from the profile parts.
//
// It prefers "FirstName LastName", falls back to Username, then Email.
func DeriveDisplayName(profile *Profile) string {
	full := strings.TrimSpace(strings.TrimSpace(profile.FirstName) + " " + strings.TrimSpace(profile.LastName))
	if full != "" {
		return full
	}

	if profile.Username != "" {
		return profile.Username
	}

	return profile.Email
}

// # Read-Only State

// State is the read-side view of the session exposed to request handlers.
//
// Handlers and outbound clients consume session state through this interface;
// only the Container mutates it.
type State interface {

	/*
		Token returns the current bearer token, or "" if signed out.

		Returns:
		  - string: Raw bearer token
	*/
	Token() string

	/*
		CurrentUser returns a copy of the operator profile, or nil if signed out.

		Returns:
		  - *Profile: Snapshot of the signed-in operator
	*/
	CurrentUser() *Profile

	/*
		IsAuthenticated reports whether a full session is present.

		Returns:
		  - bool: true when both token and profile are held
	*/
	IsAuthenticated() bool
}

// # Field Identifiers

// Global field names for validation and identity mapping in the session domain.
const (
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldToken       = "token"
	FieldAccessToken = "access_token"
	FieldUser        = "user"
	FieldRole        = "role"
	FieldDisplayName = "display_name"
)
