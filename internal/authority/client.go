// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

/*
Package authority implements the outbound client for the upstream
school-management service and the sign-in workflow built on top of it.

# Architecture

Every request the gateway makes to the school-management service flows through
[Client]. The client attaches the operator's bearer token on the way out and
enforces the session-expiry policy on the way back: any 401 response, from any
endpoint, ends the local session. There is no token refresh and no retry; the
operator signs in again.
*/
package authority

import (
	"bytes"
	stdctx "context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/minhvhoang/edugate/internal/platform/apperr"
	"github.com/minhvhoang/edugate/internal/platform/constants"
	"github.com/minhvhoang/edugate/internal/session"
)

// # Session Coupling

// SessionController is the slice of the session container the client needs:
// the read side for attaching the bearer token, plus ClearSession for the
// 401 policy.
type SessionController interface {
	session.State

	/*
		ClearSession removes the session from storage and memory.

		Parameters:
		  - context: context.Context

		Returns:
		  - error: Persistence failures
	*/
	ClearSession(context stdctx.Context) error
}

// # Outbound Client

// Client is the HTTP client for the school-management authority.
type Client struct {
	baseURL    string
	httpClient *http.Client
	sessions   SessionController
	logger     *slog.Logger

	// hookMu guards the expiry hook so concurrent 401s fire it once.
	hookMu         sync.Mutex
	onUnauthorized func(actor string)
}

// NewClient creates an authority client bound to the given session container.
//
// # Parameters
//   - baseURL: Root URL of the school-management service.
//   - sessions: Session container supplying the bearer token.
//   - logger: Structured logger for outbound request events.
func NewClient(baseURL string, sessions SessionController, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: constants.UpstreamRequestTimeout},
		sessions:   sessions,
		logger:     logger,
	}
}

// SetUnauthorizedHook registers a callback fired when a 401 ends a live
// session, carrying the username that was signed in. The hook runs at most
// once per session; a 401 received while already signed out does not fire it.
func (client *Client) SetUnauthorizedHook(hook func(actor string)) {
	client.hookMu.Lock()
	defer client.hookMu.Unlock()

	client.onUnauthorized = hook
}

// # Request Execution

/*
GetJSON performs a GET against the authority and decodes the response.

Parameters:
  - context: context.Context
  - path: string (absolute path on the authority, e.g. "/api/students")
  - out: any (decode target; pass *json.RawMessage to proxy verbatim)

Returns:
  - error: Mapped authority errors or transport failures
*/
func (client *Client) GetJSON(context stdctx.Context, path string, out any) error {
	return client.doJSON(context, http.MethodGet, path, nil, out)
}

/*
PostJSON performs a POST with a JSON body and decodes the response.

Parameters:
  - context: context.Context
  - path: string
  - payload: any (JSON-encoded request body; nil for an empty body)
  - out: any (decode target; nil to discard the response body)

Returns:
  - error: Mapped authority errors or transport failures
*/
func (client *Client) PostJSON(context stdctx.Context, path string, payload any, out any) error {
	return client.doJSON(context, http.MethodPost, path, payload, out)
}

// doJSON executes one round-trip: encode, send with bearer, map the status,
// decode.
func (client *Client) doJSON(context stdctx.Context, method, path string, payload any, out any) error {

	// 1. Encode the request body if one was provided
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("authority_encode_failed: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	// 2. Build the outbound request
	request, err := http.NewRequestWithContext(context, method, client.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("authority_request_build_failed: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	// 3. Attach the bearer token when a session is present
	if token := client.sessions.Token(); token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}

	// 4. Execute; failures to reach the authority are transport errors
	response, err := client.httpClient.Do(request)
	if err != nil {
		client.logger.Error("authority_unreachable",
			slog.String("method", method),
			slog.String("path", path),
			slog.Any("error", err),
		)
		return apperr.TransportFailure(err)
	}
	defer func() { _ = response.Body.Close() }()

	// 5. Map non-success statuses before touching the body shape
	if response.StatusCode == http.StatusUnauthorized {
		return client.handleUnauthorized(context, response)
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return client.mapFailure(response)
	}

	// 6. Decode the successful response if the caller wants it
	if out == nil {
		return nil
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("authority_decode_failed: %w", err)
	}

	return nil
}

// # Session-Expiry Policy

// handleUnauthorized applies the global 401 policy: end the local session and
// fire the expiry hook if a live session was actually cleared.
//
// The policy is unconditional. A 401 from the credential exchange itself takes
// the same path; clearing an absent session is a no-op and the hook stays
// silent.
func (client *Client) handleUnauthorized(context stdctx.Context, response *http.Response) error {

	// Capture the authority's message before the body is gone
	message := extractMessage(response.Body)

	client.hookMu.Lock()
	hadSession := client.sessions.IsAuthenticated()

	// Capture the actor before the session is gone
	actor := ""
	if user := client.sessions.CurrentUser(); user != nil {
		actor = user.Username
	}

	// Clear durably first; idempotent, so racing 401s are harmless
	if err := client.sessions.ClearSession(context); err != nil {
		client.logger.Error("session_clear_after_401_failed", slog.Any("error", err))
	}

	hook := client.onUnauthorized
	client.hookMu.Unlock()

	// Fire the hook only for the 401 that ended a live session
	if hadSession {
		client.logger.Warn("session_ended_by_authority",
			slog.String("path", response.Request.URL.Path),
		)
		if hook != nil {
			hook(actor)
		}
	}

	return apperr.AuthenticationFailed(message)
}

// mapFailure converts a non-401 failure status into an application error.
func (client *Client) mapFailure(response *http.Response) error {
	message := extractMessage(response.Body)

	switch {
	case response.StatusCode == http.StatusForbidden:
		if message == "" {
			message = "You do not have permission to perform this action"
		}
		return apperr.Forbidden(message)

	case response.StatusCode == http.StatusNotFound:
		return apperr.NotFound("Requested record")

	case response.StatusCode >= 500:
		if message == "" {
			message = "The school management service reported an internal error"
		}
		return apperr.ServiceUnavailable(message)

	default:
		if message == "" {
			message = fmt.Sprintf("The school management service rejected the request (status %d)", response.StatusCode)
		}
		return apperr.ValidationError(message)
	}
}

// extractMessage pulls a human-readable message out of an authority error
// body. Both {"message": ...} and {"error": ...} shapes are accepted.
func extractMessage(body io.Reader) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}

	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&envelope); err != nil {
		return ""
	}

	if envelope.Message != "" {
		return envelope.Message
	}

	return envelope.Error
}
