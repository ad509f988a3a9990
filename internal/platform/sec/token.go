// Copyright (c) 2026 Housika. All rights reserved.

// Package sec provides cryptographic primitives, the role hierarchy, and the
// session token codec.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the domain logic. The codec is injected into the session store through the
// [session.TokenIssuer] interface.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/housika/housika-api/internal/platform/constants"
	"github.com/housika/housika-api/pkg/uuid"
)

var (
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("sec: session signing secret is not configured")

	// ErrWeakSecret is returned when the signing secret is too short for HS256.
	ErrWeakSecret = fmt.Errorf("sec: session signing secret must be at least %d bytes", constants.MinSecretLength)
)

// Principal is the authenticated identity carried by a session token.
type Principal struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

// SessionClaims is the payload embedded inside a session token.
//
// The custom claims are abbreviated to keep the token small. The registered
// ID ("jti") is the identifier tracked by the revocation registry.
type SessionClaims struct {
	jwt.RegisteredClaims

	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Role   Role   `json:"rol"`
}

// Principal extracts the identity part of the claims.
func (claims *SessionClaims) Principal() Principal {
	return Principal{UserID: claims.UserID, Email: claims.Email, Role: claims.Role}
}

// TokenID returns the registry identifier of this token.
func (claims *SessionClaims) TokenID() string {
	return claims.ID
}

// ExpiresAtTime returns the expiry as a [time.Time], zero if absent.
func (claims *SessionClaims) ExpiresAtTime() time.Time {
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// TokenCodec issues and verifies HS256 session tokens.
type TokenCodec struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// CodecOption customises a [TokenCodec].
type CodecOption func(*TokenCodec)

// WithClock overrides the time source. Intended for tests.
func WithClock(now func() time.Time) CodecOption {
	return func(codec *TokenCodec) {
		codec.now = now
	}
}

// NewTokenCodec creates a codec signing with the given secret.
//
// A missing or short secret is a configuration error and is returned as
// [ErrMissingSecret] or [ErrWeakSecret].
func NewTokenCodec(secret []byte, issuer string, opts ...CodecOption) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrMissingSecret
	}
	if len(secret) < constants.MinSecretLength {
		return nil, ErrWeakSecret
	}

	codec := &TokenCodec{
		secret: append([]byte(nil), secret...),
		issuer: issuer,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(codec)
	}
	return codec, nil
}

// Issue signs a new token for the principal that expires after ttl.
func (codec *TokenCodec) Issue(principal Principal, ttl time.Duration) (string, *SessionClaims, error) {
	issuedAt := codec.now()
	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New(),
			Subject:   principal.UserID,
			Issuer:    codec.issuer,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		UserID: principal.UserID,
		Email:  principal.Email,
		Role:   principal.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(codec.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sec: failed to sign token: %w", err)
	}

	return signed, claims, nil
}

// Verify checks signature, issuer and expiry of a token.
//
// Every failure collapses to (nil, false): malformed input, a foreign signing
// method, a bad signature, expiry, or missing identity claims. Callers get a
// single unauthenticated branch.
func (codec *TokenCodec) Verify(tokenString string) (*SessionClaims, bool) {
	if tokenString == "" {
		return nil, false
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return codec.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(codec.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(codec.now),
	)
	if err != nil || !token.Valid {
		return nil, false
	}

	if claims.UserID == "" || claims.ID == "" {
		return nil, false
	}

	return claims, true
}
