// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

/*
Package gateway wires together the HTTP router, middleware chain, and all
handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/gateway are allowed to import net/http server primitives.
*/
package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/minhvhoang/edugate/internal/audit"
	"github.com/minhvhoang/edugate/internal/guard"
	"github.com/minhvhoang/edugate/internal/platform/config"
	"github.com/minhvhoang/edugate/internal/platform/constants"
	"github.com/minhvhoang/edugate/internal/platform/middleware"
	"github.com/minhvhoang/edugate/internal/records"
	"github.com/minhvhoang/edugate/internal/session"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all HTTP handler sets the gateway serves.
type Handlers struct {
	// Liveness is the /health handler; always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles the sign-in surface (login, logout, profile).
	Auth *AuthHandler

	// Records proxies school-management registers.
	Records *records.Handler

	// Audit exposes the operator activity trail.
	Audit *audit.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, state session.State, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Sign-In Surface
	// The login page turns signed-in operators away; credentials and
	// sign-out are handled without a session gate so they stay reachable
	// in every state.
	r.Group(func(public chi.Router) {
		public.With(guard.RedirectAuthenticated(state)).Get(constants.LoginPath, h.Auth.loginStatus)
		public.Post(constants.LoginPath, h.Auth.login)
		public.Post("/logout", h.Auth.logout)
	})

	// # Application API
	// Everything under /api/v1 requires a live session.
	r.Route("/api/v1", func(api chi.Router) {
		api.Use(guard.Protect(state))
		api.Get("/profile", h.Auth.profile)
		api.Mount("/audit", h.Audit.Routes())
		api.Mount("/", h.Records.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.GatewayPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Router exposes the underlying handler for in-process tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
