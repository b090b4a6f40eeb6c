// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package audit

import (
	stdctx "context"
	"log/slog"
	"time"

	"github.com/minhvhoang/edugate/pkg/pagination"
	"github.com/minhvhoang/edugate/pkg/uuidv7"
)

// # Recorder

// recordTimeout bounds the background write so a slow database cannot pile
// up goroutines.
const recordTimeout = 5 * time.Second

// Recorder writes audit events on a best-effort basis.
type Recorder struct {
	repository Repository
	logger     *slog.Logger
}

// NewRecorder constructs an audit [Recorder].
func NewRecorder(repository Repository, logger *slog.Logger) *Recorder {
	return &Recorder{repository: repository, logger: logger}
}

/*
Record appends one event to the trail.

Description: Best-effort. The write runs detached from the caller's request
context so an already-finished request does not cancel it, and a failure is
logged, never returned. Auditing must not break sign-in.

Parameters:
  - eventType: string (one of the Event* constants)
  - actor: string (operator username; "" for anonymous failures)
  - detail: string
  - sourceIP: string
*/
func (recorder *Recorder) Record(eventType, actor, detail, sourceIP string) {
	event := &Event{
		ID:         uuidv7.New(),
		EventType:  eventType,
		Actor:      actor,
		Detail:     detail,
		SourceIP:   sourceIP,
		OccurredAt: time.Now().UTC(),
	}

	context, cancel := stdctx.WithTimeout(stdctx.Background(), recordTimeout)
	defer cancel()

	if err := recorder.repository.Append(context, event); err != nil {
		recorder.logger.Error("audit_append_failed",
			slog.String("event_type", eventType),
			slog.Any("error", err),
		)
		return
	}

	recorder.logger.Info("audit_event_recorded",
		slog.String("event_type", eventType),
		slog.String("actor", actor),
	)
}

/*
List returns a page of audit events, newest first.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []Event: Page of events
  - pagination.Meta: Navigation metadata
  - error: Retrieval failures
*/
func (recorder *Recorder) List(context stdctx.Context, params pagination.Params) ([]Event, pagination.Meta, error) {
	events, total, err := recorder.repository.List(context, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return events, pagination.NewMeta(params.Page, params.Limit, total), nil
}
