// Copyright (c) 2026 Housika. All rights reserved.

/*
Package account handles staff-facing administration of user accounts.

It lists, reads, creates, edits and removes accounts on behalf of an
authenticated actor. Every operation is gated by the role hierarchy.

# Architecture

  - Domain: depends on the auth package for the User entity and storage.
  - Security: role edits and deletions revoke every session of the target so
    a stale role can never be replayed.
*/
package account

import (
	"context"

	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/auth"
	"github.com/housika/housika-api/pkg/pagination"
)

// # Repository Contracts

// AccountRepository is the subset of [auth.UserRepository] this package uses.
type AccountRepository interface {
	FindByID(ctx context.Context, id string) (*auth.User, error)
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
	FindByPhone(ctx context.Context, phone string) (*auth.User, error)
	Create(ctx context.Context, user *auth.User) error
	Update(ctx context.Context, user *auth.User) error
	Delete(ctx context.Context, id string) error

	/*
		List pages through accounts whose role is in roles.

		Returns:
		  - []*auth.User: the requested page
		  - int: total matching rows
		  - error: database failures
	*/
	List(ctx context.Context, roles []sec.Role, params pagination.Params) ([]*auth.User, int, error)
}

// SessionRevoker ends every session of a user.
type SessionRevoker interface {
	LogoutAll(ctx context.Context, userID string) error
}

// # Field Identifiers

const (
	FieldID          = "id"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldPhoneNumber = "phone_number"
	FieldFullName    = "full_name"
	FieldRole        = "role"
)
