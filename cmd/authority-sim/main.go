// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

// Command authority-sim runs a standalone school-management authority for
// local development of the gateway.
//
// # Seeded Credentials
//
//   - DEV0001 / password123 (admin)
//   - admin@school.com / admin123 (admin)
//
// It serves both credential exchange dialects (/auth/login, /auth/signin),
// /auth/me, and token-gated record fixtures under /api.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/minhvhoang/edugate/internal/authority/authoritytest"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("app", "authority-sim"))
	slog.SetDefault(log)

	port := os.Getenv("AUTHORITY_PORT")
	if port == "" {
		port = "9090"
	}

	signingKey := os.Getenv("AUTHORITY_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "edugate-dev-signing-key"
		log.Warn("using_default_signing_key")
	}

	simulator := authoritytest.New(signingKey)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           simulator.Handler(),
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	log.Info("authority_simulator_listening", slog.String("addr", server.Addr))

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("authority simulator failed", slog.Any("error", err))
		os.Exit(1)
	}
}
