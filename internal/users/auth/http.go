// Copyright (c) 2026 Housika. All rights reserved.

package auth

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/housika/housika-api/internal/platform/constants"
	"github.com/housika/housika-api/internal/platform/middleware"
	requestutil "github.com/housika/housika-api/internal/platform/request"
	"github.com/housika/housika-api/internal/platform/respond"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements the /api/v1/auth endpoints.
//
// # Scope
//
// Entry points of the account lifecycle: registration, sign-in, sign-out,
// role upgrades and password recovery. It owns the session cookie.
type Handler struct {
	authService   *Service
	authenticate  func(http.Handler) http.Handler
	secureCookies bool
}

/*
NewHandler constructs a new [Handler].

Parameters:
  - service: *Service
  - authenticate: middleware that resolves the bearer token into claims
  - secureCookies: set the Secure flag on the session cookie (production)
*/
func NewHandler(service *Service, authenticate func(http.Handler) http.Handler, secureCookies bool) *Handler {
	return &Handler{authService: service, authenticate: authenticate, secureCookies: secureCookies}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register        : Creates an account and signs it in.
//   - POST /login           : Signs in with email or phone number.
//   - POST /forgot-password : Emails a reset link and code.
//   - POST /reset-password  : Consumes a reset link or code.
//   - GET  /current-user    : Returns the caller's account.
//   - POST /logout          : Ends this session.
//   - POST /logout-all      : Ends every session of the caller.
//   - PUT  /upgrade         : Self-service role change.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.authenticate, middleware.RequireAuth)
		r.Get("/current-user", handler.currentUser)
		r.Post("/logout", handler.logout)
		r.Post("/logout-all", handler.logoutAll)
		r.Put("/upgrade", handler.upgrade)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phone_number"`
	FullName    string `json:"full_name"`
	Role        string `json:"role"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type upgradeRequest struct {
	NewRole string `json:"new_role"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Email, Password, PhoneNumber, FullName, Role)

Response:
  - 201: user_id, role, token
  - 400: Validation failure
  - 403: Role not available at registration
  - 409: Email or phone number already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	role := sec.ParseRole(input.Role)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, MinPasswordLength).
		Required(FieldPhoneNumber, input.PhoneNumber).
		Phone(FieldPhoneNumber, input.PhoneNumber).
		Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, MaxFullNameLength)
	if role != "" {
		validator.Role(FieldRole, role)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
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

	handler.setSessionCookie(writer, result.Session.Token)

	respond.Created(writer, map[string]any{
		FieldUserID:    result.User.ID,
		FieldRole:      result.User.Role,
		FieldToken:     result.Session.Token,
		FieldExpiresAt: result.Session.ExpiresAt,
	})
}

/*
Login authenticates a user and establishes their only live session.

POST /api/v1/auth/login

Request:
  - Body: loginRequest (Identifier, Password)

Response:
  - 200: token and user profile
  - 401: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldIdentifier, input.Identifier).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), input.Identifier, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, result.Session.Token)

	respond.OK(writer, map[string]any{
		FieldToken:     result.Session.Token,
		FieldExpiresAt: result.Session.ExpiresAt,
		FieldUser:      result.User,
	})
}

/*
CurrentUser returns the account behind the session.

GET /api/v1/auth/current-user

Response:
  - 200: User
  - 401: Missing, invalid or revoked token
*/
func (handler *Handler) currentUser(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Response:
  - 204: Session terminated and cookie cleared
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.Logout(request.Context(), claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookie(writer)
	respond.NoContent(writer)
}

// logoutAll ends every session of the caller, on every device.
func (handler *Handler) logoutAll(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.LogoutAll(request.Context(), claims); err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.clearSessionCookie(writer)
	respond.NoContent(writer)
}

/*
Upgrade changes the caller's role and reissues the session.

PUT /api/v1/auth/upgrade

Request:
  - Body: upgradeRequest (NewRole)

Response:
  - 200: new token and updated user
  - 403: Transition not allowed
*/
func (handler *Handler) upgrade(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input upgradeRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	requested := sec.ParseRole(input.NewRole)

	validator := &validate.Validator{}
	validator.Required(FieldNewRole, input.NewRole).Role(FieldNewRole, requested)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Upgrade(request.Context(), claims, requested)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, result.Session.Token)

	respond.OK(writer, map[string]any{
		FieldToken:     result.Session.Token,
		FieldExpiresAt: result.Session.ExpiresAt,
		FieldUser:      result.User,
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Response:
  - 200: Generic message whether or not the account exists
  - 400: Invalid email format
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordReset(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a reset link has been sent.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Request:
  - Body: resetPasswordRequest (Token, or Email with OTP; NewPassword)

Response:
  - 200: Password updated, every session revoked
  - 400: Invalid input or unusable credential
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, MinPasswordLength)
	if input.Token == "" {
		validator.Required(FieldEmail, input.Email).
			Email(FieldEmail, input.Email).
			Required(FieldOTP, input.OTP)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.authService.ResetPassword(request.Context(), ResetInput{
		Token:       input.Token,
		Email:       input.Email,
		OTP:         input.OTP,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password has been reset. Please sign in again.",
	})
}

// # Cookie Helpers

func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(handler.authService.sessions.TTL() / time.Second),
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   handler.secureCookies,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
