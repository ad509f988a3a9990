// Copyright (c) 2026 Housika. All rights reserved.

package account

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/mailer"
	"github.com/housika/housika-api/internal/platform/middleware"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/access"
	"github.com/housika/housika-api/internal/users/auth"
	"github.com/housika/housika-api/internal/users/session"
	"github.com/housika/housika-api/pkg/pagination"
	"github.com/housika/housika-api/pkg/uuid"
)

// # Service Layer

// WelcomeSettings controls the email sent to staff-created accounts.
type WelcomeSettings struct {
	Sender   mailer.Sender
	Branding mailer.Branding
	LoginURL string
}

// Service orchestrates account administration.
//
// Every method takes the acting caller's claims and re-checks them against the
// stored state of the target account.
type Service struct {
	accountRepository AccountRepository
	sessions          SessionRevoker
	mailer            mailer.Mailer
	welcome           WelcomeSettings
	logger            *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	accountRepo AccountRepository,
	sessions SessionRevoker,
	mail mailer.Mailer,
	welcome WelcomeSettings,
	logger *slog.Logger,
) *Service {
	return &Service{
		accountRepository: accountRepo,
		sessions:          sessions,
		mailer:            mail,
		welcome:           welcome,
		logger:            logger,
	}
}

// # Queries

/*
List returns the accounts the actor is allowed to see: its own rank and below.

Parameters:
  - ctx: context.Context
  - actor: *sec.SessionClaims
  - params: pagination.Params

Returns:
  - []*auth.User: the page
  - pagination.Meta
  - error: Forbidden for an unrecognised actor role, or storage failures
*/
func (service *Service) List(ctx context.Context, actor *sec.SessionClaims, params pagination.Params) ([]*auth.User, pagination.Meta, error) {
	roles := sec.VisibleRoles(actor.Role)
	if len(roles) == 0 {
		return nil, pagination.Meta{}, apperr.Forbidden("Insufficient permissions")
	}

	params = params.Normalize()
	users, total, err := service.accountRepository.List(ctx, roles, params)
	if err != nil {
		return nil, pagination.Meta{}, fmt.Errorf("account_service_list_failed: %w", err)
	}

	return users, pagination.NewMeta(params, total), nil
}

// Get returns one account. Callers may read themselves or anyone they outrank.
func (service *Service) Get(ctx context.Context, actor *sec.SessionClaims, id string) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("account_service_get_failed: %w", err)
	}

	if !middleware.IsOwnerOrRole(actor, user.ID, sec.Outranking(user.Role)...) {
		return nil, apperr.Forbidden("Insufficient permissions")
	}
	return user, nil
}

// # Commands

// CreateInput holds a staff-created account.
type CreateInput struct {
	Email       string
	Password    string
	PhoneNumber string
	FullName    string
	Role        sec.Role
}

/*
Create opens an account on behalf of someone else.

Description: Only account creators may call it. The new role must be one the
actor could grant directly, except tenant which anyone may create. The
reserved role is never available here. The welcome email is best effort.

Parameters:
  - ctx: context.Context
  - actor: *sec.SessionClaims
  - input: CreateInput

Returns:
  - *auth.User
  - error: Forbidden, Conflict or storage failures
*/
func (service *Service) Create(ctx context.Context, actor *sec.SessionClaims, input CreateInput) (*auth.User, error) {
	if !access.CanCreateAccounts(actor.Role) {
		return nil, apperr.Forbidden("Insufficient permissions")
	}

	role := input.Role
	if role == "" {
		role = sec.RoleTenant
	}
	if role != sec.RoleTenant && !access.CanAssignRoleDirectly(actor.Role, role, access.IsRestrictedGrantor(actor.Role)) {
		return nil, apperr.Forbidden("Role cannot be granted by this account").WithCode("ROLE_NOT_ALLOWED")
	}

	email := auth.NormalizeEmail(input.Email)
	if err := service.ensureUnique(ctx, email, input.PhoneNumber, ""); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("account_service_hash_failed: %w", err)
	}

	creator := actor.UserID
	user := &auth.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hashedPassword,
		PhoneNumber:  input.PhoneNumber,
		FullName:     auth.NormalizeName(input.FullName),
		Role:         role,
		Status:       auth.StatusActive,
		CreatedBy:    &creator,
		UpdatedBy:    &creator,
	}

	if err := service.accountRepository.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("account_service_create_failed: %w", err)
	}

	service.logger.Info("account_created",
		slog.String("user_id", user.ID),
		slog.String("role", string(user.Role)),
		slog.String("created_by", creator),
	)

	service.sendWelcome(ctx, user)
	return user, nil
}

func (service *Service) sendWelcome(ctx context.Context, user *auth.User) {
	body, err := mailer.RenderWelcome(mailer.WelcomeData{
		Branding:      service.welcome.Branding,
		RecipientName: user.FullName,
		Role:          string(user.Role),
		LoginURL:      service.welcome.LoginURL,
	})
	if err == nil {
		err = service.mailer.Send(ctx, mailer.Message{
			From:          service.welcome.Sender,
			To:            user.Email,
			RecipientName: user.FullName,
			Subject:       "Welcome to " + service.welcome.Branding.Brand,
			HTMLBody:      body,
		})
	}
	if err != nil {
		service.logger.Warn("welcome_email_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

// UpdateInput carries the fields to change. Nil means unchanged.
type UpdateInput struct {
	Email       *string
	PhoneNumber *string
	FullName    *string
	Role        *sec.Role
}

/*
Update edits an account.

Description: Profile fields may be edited by the owner or by anyone who
outranks the owner. A role change additionally needs a direct-grant right and
may not target the caller's own account. It revokes every session of the
target, so the next request must sign in again with the new role.

Parameters:
  - ctx: context.Context
  - actor: *sec.SessionClaims
  - id: string
  - input: UpdateInput

Returns:
  - *auth.User: the updated account
  - error: Forbidden, Conflict, NotFound, ServiceUnavailable or storage failures
*/
func (service *Service) Update(ctx context.Context, actor *sec.SessionClaims, id string, input UpdateInput) (*auth.User, error) {
	user, err := service.accountRepository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	isSelf := actor.UserID == user.ID
	if !middleware.IsOwnerOrRole(actor, user.ID, sec.Outranking(user.Role)...) {
		return nil, apperr.Forbidden("Insufficient permissions")
	}

	roleChanged := input.Role != nil && *input.Role != user.Role
	if roleChanged {
		if isSelf {
			return nil, apperr.Forbidden("Use the upgrade endpoint to change your own role").WithCode("ROLE_NOT_ALLOWED")
		}
		if !access.CanAssignRoleDirectly(actor.Role, *input.Role, access.IsRestrictedGrantor(actor.Role)) {
			return nil, apperr.Forbidden("Role cannot be granted by this account").WithCode("ROLE_NOT_ALLOWED")
		}
	}

	newEmail, newPhone := "", ""
	if input.Email != nil {
		if email := auth.NormalizeEmail(*input.Email); email != user.Email {
			newEmail = email
		}
	}
	if input.PhoneNumber != nil && *input.PhoneNumber != user.PhoneNumber {
		newPhone = *input.PhoneNumber
	}
	if err := service.ensureUnique(ctx, newEmail, newPhone, user.ID); err != nil {
		return nil, err
	}

	if newEmail != "" {
		user.Email = newEmail
		user.EmailVerified = false
	}
	if newPhone != "" {
		user.PhoneNumber = newPhone
	}
	if input.FullName != nil {
		user.FullName = auth.NormalizeName(*input.FullName)
	}
	previousRole := user.Role
	if roleChanged {
		user.Role = *input.Role
	}
	editor := actor.UserID
	user.UpdatedBy = &editor

	// Sessions go first. A failed revocation leaves the record untouched, and a
	// failed write afterwards only costs the user a fresh sign-in.
	if roleChanged {
		if err := service.sessions.LogoutAll(ctx, user.ID); err != nil {
			return nil, session.ToAppError(err)
		}
	}

	if err := service.accountRepository.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("account_service_update_failed: %w", err)
	}

	if roleChanged {
		service.logger.Info("account_role_changed",
			slog.String("user_id", user.ID),
			slog.String("from", string(previousRole)),
			slog.String("to", string(user.Role)),
			slog.String("changed_by", editor),
		)
	}

	return user, nil
}

// Delete removes an account the actor outranks and revokes its sessions.
func (service *Service) Delete(ctx context.Context, actor *sec.SessionClaims, id string) error {
	user, err := service.accountRepository.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	if !sec.CanActOnTarget(actor.Role, user.Role) {
		return apperr.Forbidden("Insufficient permissions")
	}

	if err := service.sessions.LogoutAll(ctx, user.ID); err != nil {
		return session.ToAppError(err)
	}

	if err := service.accountRepository.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("account_service_delete_failed: %w", err)
	}

	service.logger.Info("account_deleted",
		slog.String("user_id", user.ID),
		slog.String("deleted_by", actor.UserID),
	)
	return nil
}

// ensureUnique checks email and phone (when non-empty) against every account
// other than exceptID.
func (service *Service) ensureUnique(ctx context.Context, email, phone, exceptID string) error {
	if email != "" {
		existing, err := service.accountRepository.FindByEmail(ctx, email)
		if err == nil && existing.ID != exceptID {
			return apperr.Conflict("Email is already registered")
		}
		if err != nil && !apperr.IsNotFound(err) {
			return fmt.Errorf("account_service_lookup_failed: %w", err)
		}
	}
	if phone != "" {
		existing, err := service.accountRepository.FindByPhone(ctx, phone)
		if err == nil && existing.ID != exceptID {
			return apperr.Conflict("Phone number is already registered")
		}
		if err != nil && !apperr.IsNotFound(err) {
			return fmt.Errorf("account_service_lookup_failed: %w", err)
		}
	}
	return nil
}
