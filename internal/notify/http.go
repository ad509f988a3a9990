// Copyright (c) 2026 Housika. All rights reserved.

package notify

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/housika/housika-api/internal/platform/middleware"
	requestutil "github.com/housika/housika-api/internal/platform/request"
	"github.com/housika/housika-api/internal/platform/respond"
	"github.com/housika/housika-api/internal/platform/validate"
)

// Request and response field names.
const (
	FieldTo      = "to"
	FieldMessage = "message"
	FieldTime    = "time"
)

// Handler implements the /api/v1/emails endpoints.
type Handler struct {
	notifyService *Service
	authenticate  func(http.Handler) http.Handler
	desks         []Desk
}

// NewHandler constructs a new notify [Handler] serving one route per desk.
func NewHandler(service *Service, authenticate func(http.Handler) http.Handler, desks ...Desk) *Handler {
	return &Handler{notifyService: service, authenticate: authenticate, desks: desks}
}

// Routes mounts POST /<desk.Path> for every desk, gated by the desk's roles.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.authenticate, middleware.RequireAuth)

	for _, desk := range handler.desks {
		router.With(middleware.RequireRoles(desk.Roles...)).Post("/"+desk.Path, handler.send(desk))
	}

	return router
}

type noticeRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

/*
send emails a notice from desk.

POST /api/v1/emails/{desk}

Request:
  - Body: noticeRequest (to, message, time as RFC 3339)

Response:
  - 200: Email sent
  - 400: Validation failure
  - 403: Caller's role is not on the desk's list
  - 503: Email provider failure
*/
func (handler *Handler) send(desk Desk) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		claims, err := requestutil.RequiredClaims(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}

		var input noticeRequest
		if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
			respond.Error(writer, request, err)
			return
		}

		sentAt, timeErr := time.Parse(time.RFC3339, input.Time)

		validator := &validate.Validator{}
		validator.Required(FieldTo, input.To).Email(FieldTo, input.To).
			Required(FieldMessage, input.Message).MaxLen(FieldMessage, input.Message, MaxMessageLength).
			Required(FieldTime, input.Time).
			Custom(FieldTime, input.Time != "" && timeErr != nil, "Must be an RFC 3339 timestamp")
		if err := validator.Err(); err != nil {
			respond.Error(writer, request, err)
			return
		}

		notice := Notice{To: input.To, Message: input.Message, Time: sentAt}
		if err := handler.notifyService.Send(request.Context(), desk, claims, notice); err != nil {
			respond.Error(writer, request, err)
			return
		}

		respond.OK(writer, map[string]string{FieldMessage: "Email sent"})
	}
}
