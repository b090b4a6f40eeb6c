// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

package audit

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhvhoang/edugate/internal/platform/respond"
	"github.com/minhvhoang/edugate/pkg/pagination"
)

// # Definitions & Constructors

// Handler exposes the audit trail over HTTP.
type Handler struct {
	recorder *Recorder
}

// NewHandler constructs a new [Handler].
func NewHandler(recorder *Recorder) *Handler {
	return &Handler{recorder: recorder}
}

// Routes returns a [chi.Router] with the audit endpoints.
//
// # Endpoints
//   - GET / : Paginated activity trail, newest first.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Get("/", handler.list)
	return router
}

/*
list returns a page of audit events.

GET /api/v1/audit?page=1&limit=20

Response:
  - 200: Paginated envelope of [Event] records
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	events, meta, err := handler.recorder.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, events, meta)
}
