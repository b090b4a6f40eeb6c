// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhvhoang/edugate/pkg/pagination"
)

// fakeRepository is an in-memory [Repository] for recorder tests.
type fakeRepository struct {
	mu        sync.Mutex
	events    []Event
	appendErr error
}

func (repository *fakeRepository) Append(_ context.Context, event *Event) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if repository.appendErr != nil {
		return repository.appendErr
	}

	repository.events = append(repository.events, *event)
	return nil
}

func (repository *fakeRepository) List(_ context.Context, limit, offset int) ([]Event, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	total := len(repository.events)
	if offset >= total {
		return nil, total, nil
	}

	end := offset + limit
	if end > total {
		end = total
	}

	page := make([]Event, end-offset)
	copy(page, repository.events[offset:end])
	return page, total, nil
}

// testLogger returns a silent logger for test runs.
func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

/*
TestRecorder_RecordPersistsEvent verifies that a recorded event lands in the
repository with an ID and timestamp assigned.
*/
func TestRecorder_RecordPersistsEvent(t *testing.T) {
	repository := &fakeRepository{}
	recorder := NewRecorder(repository, testLogger())

	recorder.Record(EventLoginSucceeded, "DEV0001", "role=admin", "10.0.0.7")

	require.Len(t, repository.events, 1)
	event := repository.events[0]

	assert.Equal(t, EventLoginSucceeded, event.EventType)
	assert.Equal(t, "DEV0001", event.Actor)
	assert.Equal(t, "10.0.0.7", event.SourceIP)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.OccurredAt.IsZero())
}

/*
TestRecorder_RecordSwallowsStorageFailures verifies the best-effort contract:
a failing repository never panics or surfaces an error to the caller.
*/
func TestRecorder_RecordSwallowsStorageFailures(t *testing.T) {
	repository := &fakeRepository{appendErr: errors.New("connection refused")}
	recorder := NewRecorder(repository, testLogger())

	assert.NotPanics(t, func() {
		recorder.Record(EventLoginFailed, "DEV0001", "bad credentials", "10.0.0.7")
	})
	assert.Empty(t, repository.events)
}

/*
TestRecorder_ListPaginates verifies page slicing and metadata calculation.
*/
func TestRecorder_ListPaginates(t *testing.T) {
	repository := &fakeRepository{}
	recorder := NewRecorder(repository, testLogger())

	for range 25 {
		recorder.Record(EventLogout, "DEV0001", "", "")
	}

	events, meta, err := recorder.List(context.Background(), pagination.Params{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, events, 10)
	assert.Equal(t, 25, meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.Page)
}
