// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

/*
Package guard implements navigation gating for the operator console.

It decides, per request, whether the operator may reach a surface or must be
redirected, based purely on the in-process session state.

Rules:

  - Signed-out operators reaching a protected surface are sent to the login
    page. The requested destination is NOT preserved; after signing in the
    operator always lands on the default landing page.
  - Signed-in operators reaching the login surface are sent straight to the
    default landing page.

The guard never talks to the authority. A stale session passes the guard and
is ended by the 401 policy on the first upstream call.
*/
package guard

import (
	"log/slog"
	"net/http"

	"github.com/minhvhoang/edugate/internal/platform/constants"
	"github.com/minhvhoang/edugate/internal/platform/ctxutil"
	"github.com/minhvhoang/edugate/internal/platform/respond"
	"github.com/minhvhoang/edugate/internal/session"
)

// # Navigation Gates

// Protect blocks signed-out operators from protected surfaces.
func Protect(state session.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Signed out: send to login, discarding the requested destination
			if !state.IsAuthenticated() {
				ctxutil.GetLogger(request.Context()).Info("guard_redirected_to_login",
					slog.String("requested_path", request.URL.Path),
				)
				respond.Redirect(writer, request, constants.LoginPath)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// RedirectAuthenticated keeps signed-in operators off the login surface.
func RedirectAuthenticated(state session.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// Already signed in: the login page has nothing to offer
			if state.IsAuthenticated() {
				respond.Redirect(writer, request, constants.DefaultLandingPath)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
