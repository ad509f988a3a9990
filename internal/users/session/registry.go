// Copyright (c) 2026 Housika. All rights reserved.

/*
Package session owns bearer-token sessions: issuing them, resolving them back
to a principal, and revoking them.

# Architecture

  - Registry: tracks which token identifiers are live per user, independent of
    their cryptographic validity. Redis-backed for multi-instance deployments,
    in-memory for a single process.
  - Store: the façade handlers use. It composes the token codec with the
    registry and is the only place sessions are created or resolved.

A token is accepted only if it verifies AND its identifier is still in the
registry for its owner.
*/
package session

import (
	"context"
	"errors"
	"time"
)

// ErrRegistryUnavailable wraps every failure to reach the registry backend.
// It is a dependency failure, never an authentication verdict.
var ErrRegistryUnavailable = errors.New("session: revocation registry unavailable")

// Registry tracks live token identifiers per user.
type Registry interface {

	/*
		Add records tokenID as live for userID until expiresAt.

		Parameters:
		  - ctx: context.Context
		  - userID: string
		  - tokenID: string
		  - expiresAt: time.Time

		Returns:
		  - error: ErrRegistryUnavailable on backend failure
	*/
	Add(ctx context.Context, userID, tokenID string, expiresAt time.Time) error

	/*
		Replace atomically drops every token of userID and records tokenID.

		No concurrent IsLive observes the intermediate state.

		Returns:
		  - error: ErrRegistryUnavailable on backend failure
	*/
	Replace(ctx context.Context, userID, tokenID string, expiresAt time.Time) error

	// RemoveOne removes a single token. Absent tokens are not an error.
	RemoveOne(ctx context.Context, userID, tokenID string) error

	// RemoveAll removes every token of userID. No entries is not an error.
	RemoveAll(ctx context.Context, userID string) error

	// IsLive reports whether tokenID is currently live for userID.
	IsLive(ctx context.Context, userID, tokenID string) (bool, error)
}
