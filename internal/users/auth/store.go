// Copyright (c) 2026 Housika. All rights reserved.

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/pkg/pagination"
)

// ErrCodeNotFound is returned when a one-time code is absent or expired.
var ErrCodeNotFound = errors.New("auth: one-time code not found")

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database failures
	*/
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail looks up an account by its normalized email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByPhone looks up an account by phone number.
	FindByPhone(ctx context.Context, phone string) (*User, error)

	/*
		Create persists a brand-new account.

		Returns:
		  - error: apperr.Conflict on a duplicate email or phone, or database failures
	*/
	Create(ctx context.Context, user *User) error

	// Update persists every mutable column of the account.
	Update(ctx context.Context, user *User) error

	// UpdateRole replaces only the role column.
	UpdateRole(ctx context.Context, userID string, role sec.Role) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(ctx context.Context, userID, newHash string) error

	// Delete removes the account. apperr.NotFound if it does not exist.
	Delete(ctx context.Context, id string) error

	/*
		List pages through accounts whose role is in roles.

		Returns:
		  - []*User: the requested page
		  - int: total matching rows
		  - error: database failures
	*/
	List(ctx context.Context, roles []sec.Role, params pagination.Params) ([]*User, int, error)
}

// # Volatile Data Access

// CodeStore keeps short-lived single-use codes: reset tokens and OTPs.
type CodeStore interface {

	// Put stores value under key for ttl, replacing any previous value.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Take returns and removes the value in one step. ErrCodeNotFound if absent.
	Take(ctx context.Context, key string) (string, error)

	// Delete removes key. Absent keys are not an error.
	Delete(ctx context.Context, key string) error
}
