// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package authority

import (
	stdctx "context"
	"encoding/json"
	"log/slog"

	"github.com/minhvhoang/edugate/internal/platform/apperr"
	"github.com/minhvhoang/edugate/internal/platform/validate"
	"github.com/minhvhoang/edugate/internal/session"
)

// # Contracts & Types

// SessionWriter is the mutation side of the session container the service
// drives during sign-in and sign-out.
type SessionWriter interface {
	session.State

	/*
		SetCredentials establishes a full session from a successful login.

		Parameters:
		  - context: context.Context
		  - token: string
		  - user: *session.Profile

		Returns:
		  - error: Persistence failures
	*/
	SetCredentials(context stdctx.Context, token string, user *session.Profile) error

	/*
		ClearSession removes the session from storage and memory.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	ClearSession(context stdctx.Context) error
}

// Service implements the operator sign-in workflow against the authority.
//
// # Review Process
//
// This service is critical for security. Any changes to the credential
// exchange or session handling must be reviewed by the security team.
type Service struct {
	client    *Client
	sessions  SessionWriter
	loginPath string
	logger    *slog.Logger
}

// NewService constructs an authority [Service].
//
// # Parameters
//   - client: Outbound authority client.
//   - sessions: Session container receiving the credentials.
//   - loginPath: Credential exchange endpoint ("/auth/login" or the legacy "/auth/signin").
//   - logger: Structured logger for sign-in events.
func NewService(client *Client, sessions SessionWriter, loginPath string, logger *slog.Logger) *Service {
	return &Service{
		client:    client,
		sessions:  sessions,
		loginPath: loginPath,
		logger:    logger,
	}
}

// # Sign-In Flow

// LoginInput holds the credentials submitted by the operator.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginEnvelope covers the modern authority response shape, where the token
// and a nested user object arrive side by side.
type loginEnvelope struct {
	AccessToken    string           `json:"access_token"`
	AccessTokenAlt string           `json:"accessToken"`
	Token          string           `json:"token"`
	User           *session.Profile `json:"user"`
}

/*
Login exchanges operator credentials for a session.

Description: Posts the credentials to the authority, normalizes whichever
response shape the deployment speaks (nested user object or legacy flat
profile), and establishes the session in storage and memory.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *session.Profile: The signed-in operator
  - error: apperr AUTHENTICATION_FAILED on rejected credentials,
    TRANSPORT_FAILURE when the authority is unreachable
*/
func (service *Service) Login(context stdctx.Context, input LoginInput) (*session.Profile, error) {

	// 1. Reject obviously incomplete submissions before any network call
	validator := &validate.Validator{}
	validator.
		Required(session.FieldUsername, input.Username).
		Required(session.FieldPassword, input.Password)

	if validator.HasErrors() {
		return nil, validator.Err()
	}

	// 2. Exchange credentials; a 401 here surfaces as AUTHENTICATION_FAILED
	var raw json.RawMessage
	if err := service.client.PostJSON(context, service.loginPath, input, &raw); err != nil {
		return nil, err
	}

	// 3. Normalize the response shape
	token, profile, err := decodeLoginResponse(raw)
	if err != nil {
		return nil, err
	}

	// 4. Establish the session: durable storage first, memory second
	if err := service.sessions.SetCredentials(context, token, profile); err != nil {
		return nil, err
	}

	service.logger.Info("operator_signed_in",
		slog.String("username", profile.Username),
		slog.String("role", profile.Role),
	)

	return profile, nil
}

// decodeLoginResponse normalizes the two authority response shapes into a
// (token, profile) pair.
func decodeLoginResponse(raw json.RawMessage) (string, *session.Profile, error) {

	// Try the modern nested shape first
	var envelope loginEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", nil, apperr.Internal(err)
	}

	token := envelope.AccessToken
	if token == "" {
		token = envelope.AccessTokenAlt
	}
	if token == "" {
		token = envelope.Token
	}

	profile := envelope.User

	// Legacy deployments return a flat profile with the token inline
	if profile == nil {
		var flat session.Profile
		if err := json.Unmarshal(raw, &flat); err != nil {
			return "", nil, apperr.Internal(err)
		}
		profile = &flat
		if token == "" {
			token = flat.Token
		}
	}

	// A success response must still carry both halves of a session
	if token == "" || profile == nil || (profile.Username == "" && profile.Email == "") {
		return "", nil, apperr.AuthenticationFailed("")
	}

	// The profile never carries the raw token onward; the store owns it
	profile.Token = ""

	if profile.DisplayName == "" {
		profile.DisplayName = session.DeriveDisplayName(profile)
	}

	return token, profile, nil
}

// # Sign-Out Flow

/*
Logout ends the local session.

Description: Purely local and idempotent; signing out while already signed out
succeeds. The bearer token is NOT revoked at the authority, so a captured copy
stays valid until it expires server-side. Known gap, accepted until the
authority exposes a revocation endpoint.

Parameters:
  - context: context.Context

Returns:
  - error: Persistence failures
*/
func (service *Service) Logout(context stdctx.Context) error {

	// Clear both halves; no authority call is made
	if err := service.sessions.ClearSession(context); err != nil {
		return err
	}

	service.logger.Info("operator_signed_out")
	return nil
}

// # Profile Retrieval

/*
GetProfile fetches the operator's profile from the authority.

Description: Uses the ambient bearer token. A 401 response triggers the global
session-expiry policy inside the client before the error reaches the caller.

Parameters:
  - context: context.Context

Returns:
  - *session.Profile: Fresh profile as reported by the authority
  - error: Mapped authority errors or transport failures
*/
func (service *Service) GetProfile(context stdctx.Context) (*session.Profile, error) {

	var raw json.RawMessage
	if err := service.client.GetJSON(context, "/auth/me", &raw); err != nil {
		return nil, err
	}

	// Some deployments wrap the profile in {"user": ...}; accept both
	var envelope struct {
		User *session.Profile `json:"user"`
	}
	_ = json.Unmarshal(raw, &envelope)

	profile := envelope.User
	if profile == nil {
		var flat session.Profile
		if err := json.Unmarshal(raw, &flat); err != nil {
			return nil, apperr.Internal(err)
		}
		profile = &flat
	}

	if profile.DisplayName == "" {
		profile.DisplayName = session.DeriveDisplayName(profile)
	}

	return profile, nil
}
