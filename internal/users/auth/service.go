// Copyright (c) 2026 Housika. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/mailer"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/session"
	"github.com/housika/housika-api/pkg/uuid"
)

// # Contracts & Types

// SessionManager is the part of the session store the flows need.
type SessionManager interface {
	Login(ctx context.Context, principal sec.Principal) (session.Issued, error)
	Reissue(ctx context.Context, principal sec.Principal) (session.Issued, error)
	Logout(ctx context.Context, userID, tokenID string) error
	LogoutAll(ctx context.Context, userID string) error
	TTL() time.Duration
}

// RoleResolver decides self-service role choices.
type RoleResolver interface {
	CanSelfUpgradeTo(ctx context.Context, current, requested sec.Role) (bool, error)
	CanRegisterAs(ctx context.Context, requested sec.Role) (bool, error)
}

// MailSettings controls the password recovery email.
type MailSettings struct {
	Sender      mailer.Sender
	Branding    mailer.Branding
	FrontendURL string
}

// Service implements the account identity use cases.
//
// # Review Process
//
// This service is critical for security. Changes to hashing, registration,
// login or recovery must be reviewed together with the session store.
type Service struct {
	userRepository UserRepository
	resetTokens    CodeStore
	otps           CodeStore
	sessions       SessionManager
	resolver       RoleResolver
	mailer         mailer.Mailer
	mail           MailSettings
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	resetTokens CodeStore,
	otps CodeStore,
	sessions SessionManager,
	resolver RoleResolver,
	mail mailer.Mailer,
	settings MailSettings,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		resetTokens:    resetTokens,
		otps:           otps,
		sessions:       sessions,
		resolver:       resolver,
		mailer:         mail,
		mail:           settings,
		logger:         logger,
	}
}

// SessionResult is a user together with the session minted for them.
type SessionResult struct {
	User    *User
	Session session.Issued
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeName composes a display name to NFC and collapses inner whitespace.
// Decomposed and precomposed accents store identically.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(norm.NFC.String(name)), " ")
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email       string
	Password    string
	PhoneNumber string
	FullName    string
	Role        sec.Role
}

/*
Register creates an account and signs it in.

Description: Uniqueness is checked before the role decision so a duplicate
sign-up never burns the one-shot reserved role. An empty role means tenant.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *SessionResult: the new user and their session
  - error: Conflict, Forbidden, ServiceUnavailable or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*SessionResult, error) {
	email := NormalizeEmail(input.Email)

	if _, err := service.userRepository.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("Email is already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	if _, err := service.userRepository.FindByPhone(ctx, input.PhoneNumber); err == nil {
		return nil, apperr.Conflict("Phone number is already registered")
	} else if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("auth_service_register_lookup_failed: %w", err)
	}

	allowed, err := service.resolver.CanRegisterAs(ctx, input.Role)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Role service is temporarily unavailable", err)
	}
	if !allowed {
		return nil, apperr.Forbidden("Role is not available at registration").WithCode("ROLE_NOT_ALLOWED")
	}

	role := input.Role
	if role == "" {
		role = sec.RoleTenant
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		PhoneNumber:  input.PhoneNumber,
		FullName:     NormalizeName(input.FullName),
		Role:         role,
		Status:       StatusUnconfirmed,
	}

	if err := service.userRepository.Create(ctx, user); err != nil {
		if role == sec.RoleCEO {
			// The gate cannot be reopened; an operator has to create this account.
			service.logger.ErrorContext(ctx, "reserved_role_consumed_without_account",
				slog.String("email", email),
				slog.Any("error", err),
			)
		}
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	issued, err := service.sessions.Login(ctx, user.Principal())
	if err != nil {
		return nil, session.ToAppError(err)
	}

	service.logger.Info("user_registered",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
	)

	return &SessionResult{User: user, Session: issued}, nil
}

// # Authentication Flow

/*
Login validates credentials and starts the user's only live session.

Description: identifier is treated as an email when it contains "@" and as a
phone number otherwise. Unknown accounts and wrong passwords produce the same
error so callers cannot enumerate accounts.

Parameters:
  - ctx: context.Context
  - identifier: string
  - password: string

Returns:
  - *SessionResult
  - error: Unauthorized, ServiceUnavailable or storage errors
*/
func (service *Service) Login(ctx context.Context, identifier, password string) (*SessionResult, error) {
	var (
		user *User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = service.userRepository.FindByEmail(ctx, NormalizeEmail(identifier))
	} else {
		user, err = service.userRepository.FindByPhone(ctx, strings.TrimSpace(identifier))
	}

	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid login credentials")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	issued, err := service.sessions.Login(ctx, user.Principal())
	if err != nil {
		return nil, session.ToAppError(err)
	}

	return &SessionResult{User: user, Session: issued}, nil
}

// CurrentUser loads the account behind the session.
func (service *Service) CurrentUser(ctx context.Context, claims *sec.SessionClaims) (*User, error) {
	user, err := service.userRepository.FindByID(ctx, claims.UserID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Invalid or expired token")
		}
		return nil, fmt.Errorf("auth_service_current_user_failed: %w", err)
	}
	return user, nil
}

// Logout revokes the session the request was made with.
func (service *Service) Logout(ctx context.Context, claims *sec.SessionClaims) error {
	if err := service.sessions.Logout(ctx, claims.UserID, claims.TokenID()); err != nil {
		return session.ToAppError(err)
	}
	return nil
}

// LogoutAll revokes every session of the caller.
func (service *Service) LogoutAll(ctx context.Context, claims *sec.SessionClaims) error {
	if err := service.sessions.LogoutAll(ctx, claims.UserID); err != nil {
		return session.ToAppError(err)
	}
	return nil
}

// # Role Upgrade

/*
Upgrade moves the caller to a new role and reissues their session.

Description: The current role is read from storage, not from the token, so a
stale token cannot be used to chain transitions. Every token carrying the old
role stops resolving once this returns.

Parameters:
  - ctx: context.Context
  - claims: *sec.SessionClaims
  - requested: sec.Role

Returns:
  - *SessionResult: the updated user and the new session
  - error: Forbidden, ServiceUnavailable or storage errors
*/
func (service *Service) Upgrade(ctx context.Context, claims *sec.SessionClaims, requested sec.Role) (*SessionResult, error) {
	user, err := service.CurrentUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	if user.Role == requested {
		return nil, apperr.Conflict("Account already has this role")
	}

	allowed, err := service.resolver.CanSelfUpgradeTo(ctx, user.Role, requested)
	if err != nil {
		return nil, apperr.ServiceUnavailable("Role service is temporarily unavailable", err)
	}
	if !allowed {
		return nil, apperr.Forbidden("Role change is not allowed").WithCode("ROLE_NOT_ALLOWED")
	}

	// Revoke before writing so no token carrying the old role outlives the change.
	if err := service.sessions.LogoutAll(ctx, user.ID); err != nil {
		return nil, session.ToAppError(err)
	}

	if err := service.userRepository.UpdateRole(ctx, user.ID, requested); err != nil {
		return nil, fmt.Errorf("auth_service_upgrade_failed: %w", err)
	}
	previous := user.Role
	user.Role = requested

	issued, err := service.sessions.Reissue(ctx, user.Principal())
	if err != nil {
		return nil, session.ToAppError(err)
	}

	service.logger.Info("user_role_upgraded",
		slog.String("user_id", user.ID),
		slog.String("from", string(previous)),
		slog.String("to", string(requested)),
	)

	return &SessionResult{User: user, Session: issued}, nil
}

// # Password Recovery

// otpSeparator joins the OTP with the reset token it unlocks.
const otpSeparator = "|"

/*
RequestPasswordReset issues a reset token and an OTP and emails both.

Description: Unknown emails are silently ignored and mail delivery failures
are only logged, so the caller always sees the same outcome.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: storage failures only
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := service.userRepository.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return fmt.Errorf("auth_service_token_gen_failed: %w", err)
	}
	otp, err := sec.GenerateOTP(OTPDigits)
	if err != nil {
		return fmt.Errorf("auth_service_otp_gen_failed: %w", err)
	}

	if err := service.resetTokens.Put(ctx, token, user.ID, ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_reset_store_failed: %w", err)
	}
	if err := service.otps.Put(ctx, user.Email, otp+otpSeparator+token, ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_otp_store_failed: %w", err)
	}

	service.sendResetEmail(ctx, user, token, otp)
	return nil
}

func (service *Service) sendResetEmail(ctx context.Context, user *User, token, otp string) {
	body, err := mailer.RenderPasswordReset(mailer.PasswordResetData{
		Branding:      service.mail.Branding,
		RecipientName: user.FullName,
		ResetLink:     service.resetLink(token),
		OTP:           otp,
	})
	if err == nil {
		err = service.mailer.Send(ctx, mailer.Message{
			From:          service.mail.Sender,
			To:            user.Email,
			RecipientName: user.FullName,
			Subject:       "Reset your " + service.mail.Branding.Brand + " password",
			HTMLBody:      body,
		})
	}
	if err != nil {
		service.logger.Error("password_reset_email_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

func (service *Service) resetLink(token string) string {
	return strings.TrimRight(service.mail.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// ResetInput carries either a reset token or an email with its OTP.
type ResetInput struct {
	Token       string
	Email       string
	OTP         string
	NewPassword string
}

/*
ResetPassword consumes a reset credential and replaces the password.

Description: Credentials are single use. A wrong OTP consumes it too, so each
emailed code allows exactly one guess. All sessions of the user are revoked.

Parameters:
  - ctx: context.Context
  - input: ResetInput

Returns:
  - error: ValidationError for unusable credentials, or storage failures
*/
func (service *Service) ResetPassword(ctx context.Context, input ResetInput) error {
	token := input.Token
	if token == "" {
		stored, err := service.otps.Take(ctx, NormalizeEmail(input.Email))
		if err != nil {
			return service.codeError(err)
		}
		otp, linkedToken, _ := strings.Cut(stored, otpSeparator)
		if !sec.ConstantTimeEqual(otp, input.OTP) {
			return invalidResetCredential()
		}
		token = linkedToken
	}

	userID, err := service.resetTokens.Take(ctx, token)
	if err != nil {
		return service.codeError(err)
	}

	hashedPassword, err := sec.HashPassword(input.NewPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_failed: %w", err)
	}

	if err := service.sessions.LogoutAll(ctx, userID); err != nil {
		return session.ToAppError(err)
	}

	service.logger.Info("password_reset", slog.String("user_id", userID))
	return nil
}

func (service *Service) codeError(err error) error {
	if errors.Is(err, ErrCodeNotFound) {
		return invalidResetCredential()
	}
	return fmt.Errorf("auth_service_code_take_failed: %w", err)
}

func invalidResetCredential() error {
	return apperr.ValidationError("Reset token or code is invalid or expired").WithCode("INVALID_RESET_TOKEN")
}
