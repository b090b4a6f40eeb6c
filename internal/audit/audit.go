// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

/*
Package audit implements the gateway's operator activity trail.

Every session lifecycle event (sign-in, failed sign-in, sign-out, expiry) is
written to an append-only PostgreSQL table, so a compromised workstation can
be reconstructed after the fact.

Architecture:

  - Recorder: Best-effort write path; a storage failure never blocks the
    operation that produced the event.
  - Repository: pgx-backed append and paginated read.
*/
package audit

import (
	"context"
	"time"
)

// # Event Types

// Recognized audit event types.
const (
	EventLoginSucceeded = "login_succeeded"
	EventLoginFailed    = "login_failed"
	EventLogout         = "logout"
	EventSessionExpired = "session_expired"
)

// # Domain Entities

// Event is one row in the operator activity trail.
type Event struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	Actor      string    `json:"actor"`
	Detail     string    `json:"detail,omitempty"`
	SourceIP   string    `json:"source_ip,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// # Data Access

// Repository defines the storage contract for audit events.
type Repository interface {

	/*
		Append persists one event to the trail.

		Parameters:
		  - context: context.Context
		  - event: *Event

		Returns:
		  - error: Persistence failures
	*/
	Append(context context.Context, event *Event) error

	/*
		List returns events newest-first with the total row count.

		Parameters:
		  - context: context.Context
		  - limit: int
		  - offset: int

		Returns:
		  - []Event: Page of events
		  - int: Total number of events in the trail
		  - error: Retrieval failures
	*/
	List(context context.Context, limit, offset int) ([]Event, int, error)
}
