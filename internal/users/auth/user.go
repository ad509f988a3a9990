// Copyright (c) 2026 Housika. All rights reserved.

/*
Package auth implements account identity: registration, login, logout,
self-service role upgrades and password recovery.

Architecture:

  - Service: orchestrates the flows and is the only caller of the session store
    for sign-in.
  - Repository: Postgres for accounts, Redis (or memory) for one-time reset
    tokens and OTPs.
  - Handler: the /api/v1/auth HTTP surface, including the session cookie.
*/
package auth

import (
	"time"

	"github.com/housika/housika-api/internal/platform/sec"
)

// # Domain Entities

// Status is the lifecycle state of an account.
type Status string

const (
	StatusUnconfirmed Status = "UNCONFIRMED"
	StatusActive      Status = "ACTIVE"
)

// User is a registered member of the marketplace.
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"-"`
	PhoneNumber   string    `json:"phone_number"`
	FullName      string    `json:"full_name"`
	Role          sec.Role  `json:"role"`
	Status        Status    `json:"status"`
	EmailVerified bool      `json:"email_verified"`
	CreatedBy     *string   `json:"created_by,omitempty"`
	UpdatedBy     *string   `json:"updated_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Principal is the identity a session token is minted for.
func (user *User) Principal() sec.Principal {
	return sec.Principal{UserID: user.ID, Email: user.Email, Role: user.Role}
}

// # Field Identifiers

// Field names used in validation errors and JSON payloads.
const (
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldPhoneNumber = "phone_number"
	FieldFullName    = "full_name"
	FieldRole        = "role"
	FieldNewRole     = "new_role"
	FieldIdentifier  = "identifier"
	FieldToken       = "token"
	FieldOTP         = "otp"
	FieldNewPassword = "new_password"
	FieldUser        = "user"
	FieldUserID      = "user_id"
	FieldExpiresAt   = "expires_at"
	FieldMessage     = "message"
)
