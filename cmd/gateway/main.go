// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

// Command gateway is the entry point for the EduGate operator console gateway.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Initialize the session container from durable storage.
//  7. Wire the authority client, services, and HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/minhvhoang/edugate/internal/audit"
	"github.com/minhvhoang/edugate/internal/authority"
	"github.com/minhvhoang/edugate/internal/gateway"
	"github.com/minhvhoang/edugate/internal/platform/config"
	"github.com/minhvhoang/edugate/internal/platform/constants"
	"github.com/minhvhoang/edugate/internal/platform/migration"
	pgstore "github.com/minhvhoang/edugate/internal/platform/postgres"
	redisstore "github.com/minhvhoang/edugate/internal/platform/redis"
	"github.com/minhvhoang/edugate/internal/records"
	"github.com/minhvhoang/edugate/internal/session"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", constants.AppName))
	slog.SetDefault(log)

	log.Info("[EduGate] gateway_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", constants.AppName))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.GatewayPort),
		slog.String("authority", cfg.AuthorityURL),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Session Container ──────────────────────────────────────────────
	// Seed the in-process session from Redis; a previous sign-in survives
	// the restart and its token is trusted until the authority says otherwise.
	sessionStore := session.NewRedisStore(rdb, cfg.SessionScope)
	container := session.NewContainer(sessionStore, log)
	must(log, container.Init(startupCtx), "initialize session container")
	defer func() {
		if derr := container.Dispose(); derr != nil {
			log.Error("session container dispose error", slog.Any("error", derr))
		}
	}()

	// ── 7. Audit Trail ────────────────────────────────────────────────────
	auditRepository := audit.NewPostgresRepository(pool)
	auditRecorder := audit.NewRecorder(auditRepository, log)

	// ── 8. Authority Client & Services ────────────────────────────────────
	authorityClient := authority.NewClient(cfg.AuthorityURL, container, log)
	authorityClient.SetUnauthorizedHook(func(actor string) {
		auditRecorder.Record(audit.EventSessionExpired, actor, "bearer rejected by authority", "")
	})

	authorityService := authority.NewService(authorityClient, container, cfg.AuthorityLoginPath, log)

	// ── 9. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := gateway.NewHealthHandlers(gateway.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckSessionStore: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := gateway.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      gateway.NewAuthHandler(authorityService, auditRecorder, container),
		Records:   records.NewHandler(authorityClient),
		Audit:     audit.NewHandler(auditRecorder),
	}

	server := gateway.NewServer(serverCtx, cfg, log, container, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
