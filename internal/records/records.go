// Copyright (c) 2026 EduGate. All rights reserved.
// Author: minh.hv@edugate.app

/*
Package records proxies school-management records through the gateway.

The gateway does not own any of this data; every endpoint here forwards to the
upstream authority with the operator's bearer token attached and relays the
response. What the package adds is the session gate in front, the global 401
policy behind, and input validation for the few write paths.

Surfaces:

  - People: students, staff, parents.
  - Front office: visitor, enquiry, phone call, postal and complaint logs.
  - Dashboard: fan-in of record counts across the people surfaces.
*/
package records

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/minhvhoang/edugate/internal/authority"
	requestutil "github.com/minhvhoang/edugate/internal/platform/request"
	"github.com/minhvhoang/edugate/internal/platform/respond"
	"github.com/minhvhoang/edugate/internal/platform/validate"
)

// # Definitions & Constructors

// Handler proxies record endpoints to the authority.
type Handler struct {
	client *authority.Client
}

// NewHandler constructs a new [Handler].
func NewHandler(client *authority.Client) *Handler {
	return &Handler{client: client}
}

// Routes returns a [chi.Router] with all record surfaces.
//
// # Endpoints
//   - GET  /students, /staff, /parents : People registers.
//   - GET  /front-office/*             : Front-office logs.
//   - POST /front-office/visitors      : Logs a walk-in visitor.
//   - GET  /dashboard                  : Record counts across registers.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// People registers
	router.Get("/students", handler.proxy("/api/students"))
	router.Get("/staff", handler.proxy("/api/staff"))
	router.Get("/parents", handler.proxy("/api/parents"))

	// Front-office logs
	router.Route("/front-office", func(frontOffice chi.Router) {
		frontOffice.Get("/visitors", handler.proxy("/api/front-office/visitors"))
		frontOffice.Post("/visitors", handler.createVisitor)
		frontOffice.Get("/enquiries", handler.proxy("/api/front-office/enquiries"))
		frontOffice.Get("/phone-calls", handler.proxy("/api/front-office/phone-calls"))
		frontOffice.Get("/postal", handler.proxy("/api/front-office/postal"))
		frontOffice.Get("/complaints", handler.proxy("/api/front-office/complaints"))
	})

	// Dashboard summary
	router.Get("/dashboard", handler.dashboard)

	return router
}

// # Read Proxying

// proxy builds a GET passthrough for one authority path. The query string is
// forwarded untouched so upstream pagination and filters keep working.
func (handler *Handler) proxy(upstreamPath string) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		path := upstreamPath
		if rawQuery := request.URL.RawQuery; rawQuery != "" {
			path += "?" + rawQuery
		}

		var payload json.RawMessage
		if err := handler.client.GetJSON(request.Context(), path, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, payload)
	}
}

// # Write Paths

type createVisitorRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Purpose string `json:"purpose"`
	ToMeet  string `json:"to_meet"`
	IDProof string `json:"id_proof,omitempty"`
}

/*
createVisitor logs a walk-in visitor at the front office.

POST /api/v1/front-office/visitors

Request:
  - Body: createVisitorRequest (Name, Phone, Purpose, ToMeet)

Response:
  - 201: The visitor record as stored by the authority
*/
func (handler *Handler) createVisitor(writer http.ResponseWriter, request *http.Request) {
	var body createVisitorRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	// Validate locally before spending an upstream round-trip
	validator := &validate.Validator{}
	validator.
		Required("name", body.Name).
		MaxLen("name", body.Name, 120).
		Required("phone", body.Phone).
		Required("purpose", body.Purpose).
		MaxLen("purpose", body.Purpose, 500)

	if validator.HasErrors() {
		respond.Error(writer, request, validator.Err())
		return
	}

	var created json.RawMessage
	if err := handler.client.PostJSON(request.Context(), "/api/front-office/visitors", body, &created); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, created)
}

// # Dashboard Fan-In

// dashboardCounts is the summary the console landing page renders.
type dashboardCounts struct {
	Students int `json:"students"`
	Staff    int `json:"staff"`
	Parents  int `json:"parents"`
	Visitors int `json:"visitors"`
}

/*
dashboard aggregates record counts across the main registers.

GET /api/v1/dashboard

Description: Fans out to the people and visitor registers concurrently and
counts the returned records. Any single upstream failure fails the whole
summary; partial dashboards mislead more than they help.

Response:
  - 200: dashboardCounts
*/
func (handler *Handler) dashboard(writer http.ResponseWriter, request *http.Request) {
	var counts dashboardCounts

	group, groupCtx := errgroup.WithContext(request.Context())

	fetch := func(path string, target *int) func() error {
		return func() error {
			var payload json.RawMessage
			if err := handler.client.GetJSON(groupCtx, path, &payload); err != nil {
				return err
			}
			*target = countRecords(payload)
			return nil
		}
	}

	group.Go(fetch("/api/students", &counts.Students))
	group.Go(fetch("/api/staff", &counts.Staff))
	group.Go(fetch("/api/parents", &counts.Parents))
	group.Go(fetch("/api/front-office/visitors", &counts.Visitors))

	if err := group.Wait(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, counts)
}

// countRecords counts the entries in an authority list response. Both a bare
// array and a {"data": [...]} envelope are accepted; anything else counts as
// zero.
func countRecords(payload json.RawMessage) int {
	var direct []json.RawMessage
	if err := json.Unmarshal(payload, &direct); err == nil {
		return len(direct)
	}

	var wrapped struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil {
		return len(wrapped.Data)
	}

	return 0
}
