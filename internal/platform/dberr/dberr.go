// Copyright (c) 2026 Housika. All rights reserved.

// Package dberr translates low-level database errors into [apperr.AppError].
package dberr

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/housika/housika-api/internal/platform/apperr"
)

// uniqueViolation is the Postgres SQLSTATE for a unique-constraint failure.
const uniqueViolation = "23505"

// IsNotFound reports whether err means the query matched no rows.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is a unique-constraint failure and
// returns the violated constraint name.
func IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// Wrap classifies a database error for the client while keeping the cause
// for server-side logs.
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}
	if IsNotFound(err) {
		return apperr.NotFound(resource)
	}
	if _, ok := IsUniqueViolation(err); ok {
		return apperr.Conflict(resource + " already exists")
	}
	return apperr.Internal(err)
}
