// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package gateway

import (
	"fmt"
	"net/http"

	"github.com/minhvhoang/edugate/internal/audit"
	"github.com/minhvhoang/edugate/internal/authority"
	"github.com/minhvhoang/edugate/internal/platform/apperr"
	requestutil "github.com/minhvhoang/edugate/internal/platform/request"
	"github.com/minhvhoang/edugate/internal/platform/respond"
	"github.com/minhvhoang/edugate/internal/platform/validate"
	"github.com/minhvhoang/edugate/internal/session"
)

// # Definitions & Constructors

// AuthHandler implements the sign-in surface of the console.
//
// # Scope
//
// This handler manages the operator's session entry points (sign-in, sign-out,
// profile) and records every outcome to the audit trail.
type AuthHandler struct {
	authService *authority.Service
	recorder    *audit.Recorder
	state       session.State
}

// NewAuthHandler constructs a new [AuthHandler] with its dependencies.
func NewAuthHandler(service *authority.Service, recorder *audit.Recorder, state session.State) *AuthHandler {
	return &AuthHandler{
		authService: service,
		recorder:    recorder,
		state:       state,
	}
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
login exchanges operator credentials for a session.

POST /login

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: The signed-in operator profile
  - 401: AUTHENTICATION_FAILED when the authority rejects the credentials
  - 502: TRANSPORT_FAILURE when the authority is unreachable
*/
func (handler *AuthHandler) login(writer http.ResponseWriter, request *http.Request) {
	var body loginRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	profile, err := handler.authService.Login(request.Context(), authority.LoginInput{
		Username: body.Username,
		Password: body.Password,
	})

	if err != nil {
		// Failed attempts are part of the trail; transport failures are not,
		// since they say nothing about the credentials
		if apperr.IsAuthenticationFailed(err) {
			handler.recorder.Record(audit.EventLoginFailed, body.Username, err.Error(), requestutil.ClientIP(request))
		}
		respond.Error(writer, request, err)
		return
	}

	handler.recorder.Record(
		audit.EventLoginSucceeded,
		profile.Username,
		fmt.Sprintf("role=%s", profile.Role),
		requestutil.ClientIP(request),
	)

	respond.OK(writer, profile)
}

/*
logout ends the local session.

POST /logout

Description: Idempotent; signing out while signed out still returns 204. The
bearer token is not revoked upstream.

Response:
  - 204: Session cleared (or was already absent)
*/
func (handler *AuthHandler) logout(writer http.ResponseWriter, request *http.Request) {

	// Capture the actor before the session disappears
	actor := ""
	if user := handler.state.CurrentUser(); user != nil {
		actor = user.Username
	}
	wasSignedIn := handler.state.IsAuthenticated()

	if err := handler.authService.Logout(request.Context()); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// A sign-out that ended nothing is not an auditable event
	if wasSignedIn {
		handler.recorder.Record(audit.EventLogout, actor, "", requestutil.ClientIP(request))
	}

	respond.NoContent(writer)
}

/*
profile returns the operator's profile, refreshed from the authority.

GET /api/v1/profile

Response:
  - 200: Fresh operator profile
  - 401: Session ended by the authority (token no longer accepted)
*/
func (handler *AuthHandler) profile(writer http.ResponseWriter, request *http.Request) {
	profile, err := handler.authService.GetProfile(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
loginStatus reports the sign-in state of the console.

GET /login

Description: Reached only while signed out; signed-in operators are redirected
to the landing page by the navigation gate before this handler runs.

Response:
  - 200: {"status": "signed_out"}
*/
func (handler *AuthHandler) loginStatus(writer http.ResponseWriter, request *http.Request) {
	respond.OK(writer, map[string]string{"status": "signed_out"})
}
