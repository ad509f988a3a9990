// Copyright (c) 2026 Housika. All rights reserved.

package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/constants"
	"github.com/housika/housika-api/internal/platform/sec"
)

// TokenIssuer is the codec contract the store depends on.
type TokenIssuer interface {
	Issue(principal sec.Principal, ttl time.Duration) (string, *sec.SessionClaims, error)
	Verify(token string) (*sec.SessionClaims, bool)
}

// Issued is a freshly minted session.
type Issued struct {
	Token     string
	TokenID   string
	Principal sec.Principal
	ExpiresAt time.Time
}

// Store is the single entry point for authentication.
type Store struct {
	codec     TokenIssuer
	registry  Registry
	ttl       time.Duration
	opTimeout time.Duration
	logger    *slog.Logger
}

// NewStore composes a codec and a registry into a session store.
func NewStore(codec TokenIssuer, registry Registry, ttl time.Duration, logger *slog.Logger) *Store {
	return &Store{
		codec:     codec,
		registry:  registry,
		ttl:       ttl,
		opTimeout: constants.RegistryOpTimeout,
		logger:    logger,
	}
}

// TTL returns the lifetime of tokens issued by this store.
func (store *Store) TTL() time.Duration {
	return store.ttl
}

/*
Login issues a token for the principal and makes it the user's only live session.

Description: Prior sessions for the same user are invalidated in the same
atomic registry write that registers the new one.

Parameters:
  - ctx: context.Context
  - principal: sec.Principal

Returns:
  - Issued: the new token and its metadata
  - error: signing failure or ErrRegistryUnavailable
*/
func (store *Store) Login(ctx context.Context, principal sec.Principal) (Issued, error) {
	token, claims, err := store.codec.Issue(principal, store.ttl)
	if err != nil {
		return Issued{}, fmt.Errorf("session_store_issue_failed: %w", err)
	}

	opCtx, cancel := context.WithTimeout(ctx, store.opTimeout)
	defer cancel()

	if err := store.registry.Replace(opCtx, principal.UserID, claims.TokenID(), claims.ExpiresAtTime()); err != nil {
		return Issued{}, fmt.Errorf("session_store_register_failed: %w", err)
	}

	store.logger.Info("session_issued",
		slog.String("user_id", principal.UserID),
		slog.String("role", string(principal.Role)),
	)

	return Issued{
		Token:     token,
		TokenID:   claims.TokenID(),
		Principal: principal,
		ExpiresAt: claims.ExpiresAtTime(),
	}, nil
}

// Reissue mints a fresh session after a role change. Tokens carrying the old
// role stop resolving as soon as it returns.
func (store *Store) Reissue(ctx context.Context, principal sec.Principal) (Issued, error) {
	return store.Login(ctx, principal)
}

/*
Resolve turns a raw bearer token into its claims.

Description: ok is false for malformed, expired, forged, or revoked tokens and
the cases are deliberately indistinguishable. err is non-nil only when the
registry cannot be reached, in which case the token is NOT accepted.

Parameters:
  - ctx: context.Context
  - rawToken: string

Returns:
  - *sec.SessionClaims: verified claims when ok
  - bool: ok
  - error: ErrRegistryUnavailable
*/
func (store *Store) Resolve(ctx context.Context, rawToken string) (*sec.SessionClaims, bool, error) {
	claims, ok := store.codec.Verify(rawToken)
	if !ok {
		return nil, false, nil
	}

	opCtx, cancel := context.WithTimeout(ctx, store.opTimeout)
	defer cancel()

	live, err := store.registry.IsLive(opCtx, claims.UserID, claims.TokenID())
	if err != nil {
		return nil, false, err
	}
	if !live {
		return nil, false, nil
	}

	return claims, true, nil
}

// Logout revokes a single session.
func (store *Store) Logout(ctx context.Context, userID, tokenID string) error {
	opCtx, cancel := context.WithTimeout(ctx, store.opTimeout)
	defer cancel()

	if err := store.registry.RemoveOne(opCtx, userID, tokenID); err != nil {
		return fmt.Errorf("session_store_logout_failed: %w", err)
	}
	return nil
}

// LogoutAll revokes every session of the user.
func (store *Store) LogoutAll(ctx context.Context, userID string) error {
	opCtx, cancel := context.WithTimeout(ctx, store.opTimeout)
	defer cancel()

	if err := store.registry.RemoveAll(opCtx, userID); err != nil {
		return fmt.Errorf("session_store_logout_all_failed: %w", err)
	}

	store.logger.Info("sessions_revoked", slog.String("user_id", userID))
	return nil
}

// ToAppError maps registry outages to 503 and leaves other errors untouched.
func ToAppError(err error) error {
	if errors.Is(err, ErrRegistryUnavailable) {
		return apperr.ServiceUnavailable("Session service is temporarily unavailable", err)
	}
	return err
}
