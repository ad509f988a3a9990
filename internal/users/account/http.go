// Copyright (c) 2026 Housika. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/housika/housika-api/internal/platform/middleware"
	requestutil "github.com/housika/housika-api/internal/platform/request"
	"github.com/housika/housika-api/internal/platform/respond"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/platform/validate"
	"github.com/housika/housika-api/internal/users/access"
	"github.com/housika/housika-api/internal/users/auth"
	"github.com/housika/housika-api/pkg/pagination"
)

// Handler implements the /api/v1/users endpoints.
//
// # Security
//
// Every route requires a live session. Per-target checks happen in [Service].
type Handler struct {
	accountService *Service
	authenticate   func(http.Handler) http.Handler
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service, authenticate func(http.Handler) http.Handler) *Handler {
	return &Handler{accountService: service, authenticate: authenticate}
}

// Routes returns a [chi.Router] configured with the user administration endpoints.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(handler.authenticate, middleware.RequireAuth)

	router.Get("/", handler.list)
	router.With(middleware.RequireRoles(access.AccountCreators()...)).Post("/", handler.create)
	router.Get("/{id}", handler.get)
	router.Put("/{id}", handler.update)
	router.Delete("/{id}", handler.delete)

	return router
}

// # Request Payloads

type createRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
}

type updateRequest struct {
	Email       *string `json:"email"`
	PhoneNumber *string `json:"phone_number"`
	FullName    *string `json:"full_name"`
	Role        *string `json:"role"`
}

/*
GET /api/v1/users.

Description: Lists the accounts visible to the caller, newest first.

Response:
  - 200: []User with pagination metadata
  - 403: Caller role not recognised
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	users, meta, err := handler.accountService.List(request.Context(), actor, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, meta)
}

/*
GET /api/v1/users/{id}.

Response:
  - 200: User
  - 403: Caller does not outrank the target
  - 404: No such account
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	actor, id, ok := handler.actorAndID(writer, request)
	if !ok {
		return
	}

	user, err := handler.accountService.Get(request.Context(), actor, id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
POST /api/v1/users.

Description: Staff create an account for someone else.

Request:
  - Body: createRequest

Response:
  - 201: User
  - 400: Validation failure
  - 403: Caller cannot create accounts or grant the role
  - 409: Email or phone number already registered
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	actor, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role := sec.ParseRole(input.Role)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, auth.MinPasswordLength).
		Required(FieldPhoneNumber, input.PhoneNumber).
		Phone(FieldPhoneNumber, input.PhoneNumber).
		Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, auth.MaxFullNameLength)
	if role != "" {
		validator.Role(FieldRole, role)
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Create(request.Context(), actor, CreateInput{
		Email:       input.Email,
		Password:    input.Password,
		PhoneNumber: input.PhoneNumber,
		FullName:    input.FullName,
		Role:        role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
PUT /api/v1/users/{id}.

Description: Edits profile fields and, for staff, the role. A role change
signs the target out everywhere.

Response:
  - 200: User
  - 400: Validation failure
  - 403: Not allowed on this target or role
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	actor, id, ok := handler.actorAndID(writer, request)
	if !ok {
		return
	}

	var input updateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	if input.Email != nil {
		validator.Email(FieldEmail, *input.Email)
	}
	if input.PhoneNumber != nil {
		validator.Phone(FieldPhoneNumber, *input.PhoneNumber)
	}
	if input.FullName != nil {
		validator.Required(FieldFullName, *input.FullName).
			MaxLen(FieldFullName, *input.FullName, auth.MaxFullNameLength)
	}

	var role *sec.Role
	if input.Role != nil {
		parsed := sec.ParseRole(*input.Role)
		validator.Role(FieldRole, parsed)
		role = &parsed
	}
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Update(request.Context(), actor, id, UpdateInput{
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		FullName:    input.FullName,
		Role:        role,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
DELETE /api/v1/users/{id}.

Response:
  - 204: Deleted and signed out everywhere
  - 403: Caller does not outrank the target
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	actor, id, ok := handler.actorAndID(writer, request)
	if !ok {
		return
	}

	if err := handler.accountService.Delete(request.Context(), actor, id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// actorAndID reads the caller and a well-formed {id} path parameter.
func (handler *Handler) actorAndID(writer http.ResponseWriter, request *http.Request) (*sec.SessionClaims, string, bool) {
	actor, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return nil, "", false
	}

	id := requestutil.Param(request, FieldID)
	validator := &validate.Validator{}
	if err := validator.UUID(FieldID, id).Err(); err != nil {
		respond.Error(writer, request, err)
		return nil, "", false
	}

	return actor, id, true
}
