// Copyright (c) 2026 Housika. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/database/schema"
	"github.com/housika/housika-api/internal/platform/dberr"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/pkg/pagination"
)

// # User Repository

var (
	account       = schema.UserAccount
	selectColumns = strings.Join(account.Columns(), ", ")
)

// PostgresUserRepository implements [UserRepository] using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// scanUser hydrates a row selected with selectColumns.
func scanUser(row pgx.Row) (*User, error) {
	var (
		user   User
		role   string
		status string
	)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.PhoneNumber,
		&user.FullName,
		&role,
		&status,
		&user.EmailVerified,
		&user.CreatedBy,
		&user.UpdatedBy,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Role = sec.ParseRole(role)
	user.Status = Status(status)
	return &user, nil
}

func (repository *PostgresUserRepository) findBy(ctx context.Context, column, value, action string) (*User, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", selectColumns, account.Table, column)

	user, err := scanUser(repository.pool.QueryRow(ctx, query, value))
	if err != nil {
		if dberr.IsNotFound(err) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_%s_failed: %w", action, err)
	}
	return user, nil
}

// FindByID retrieves a user by primary key.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	return repository.findBy(ctx, account.ID, id, "find_by_id")
}

// FindByEmail retrieves a user by normalized email.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findBy(ctx, account.Email, email, "find_by_email")
}

// FindByPhone retrieves a user by phone number.
func (repository *PostgresUserRepository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	return repository.findBy(ctx, account.PhoneNumber, phone, "find_by_phone")
}

/*
Create persists a new user record into the users.account table.

Description: Initializes timestamps when unset. Unique violations on email or
phone number surface as apperr.Conflict.

Parameters:
  - ctx: context.Context
  - user: *User (Entity to persist)

Returns:
  - error: apperr.Conflict or database failures
*/
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)",
		account.Table, selectColumns,
	)

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.PhoneNumber,
		user.FullName,
		string(user.Role),
		string(user.Status),
		user.EmailVerified,
		user.CreatedBy,
		user.UpdatedBy,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := dberr.IsUniqueViolation(err); ok {
			return conflictFor(constraint)
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}
	return nil
}

// conflictFor names the duplicated field when the constraint is known.
func conflictFor(constraint string) error {
	switch {
	case strings.Contains(constraint, account.PhoneNumber):
		return apperr.Conflict("Phone number is already registered")
	case strings.Contains(constraint, account.Email):
		return apperr.Conflict("Email is already registered")
	}
	return apperr.Conflict("User already exists")
}

/*
Update persists the mutable account columns and refreshes updated_at.

Parameters:
  - ctx: context.Context
  - user: *User

Returns:
  - error: apperr.NotFound, apperr.Conflict or database failures
*/
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = $9
		WHERE %s = $1`,
		account.Table,
		account.Email, account.PhoneNumber, account.FullName, account.Role,
		account.Status, account.EmailVerified, account.UpdatedBy, account.UpdatedAt,
		account.ID,
	)

	user.UpdatedAt = time.Now().UTC()
	tag, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PhoneNumber,
		user.FullName,
		string(user.Role),
		string(user.Status),
		user.EmailVerified,
		user.UpdatedBy,
		user.UpdatedAt,
	)
	if err != nil {
		if constraint, ok := dberr.IsUniqueViolation(err); ok {
			return conflictFor(constraint)
		}
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// UpdateRole replaces the role of a single account.
func (repository *PostgresUserRepository) UpdateRole(ctx context.Context, userID string, role sec.Role) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1",
		account.Table, account.Role, account.UpdatedAt, account.ID)

	tag, err := repository.pool.Exec(ctx, query, userID, string(role), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_role_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// UpdatePassword replaces the password hash of a single account.
func (repository *PostgresUserRepository) UpdatePassword(ctx context.Context, userID, newHash string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = $2, %s = $3 WHERE %s = $1",
		account.Table, account.PasswordHash, account.UpdatedAt, account.ID)

	tag, err := repository.pool.Exec(ctx, query, userID, newHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_password_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

// Delete removes the account row.
func (repository *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", account.Table, account.ID)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("postgres_user_repo_delete_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}

/*
List returns one page of accounts whose role is in roles, newest first.

Parameters:
  - ctx: context.Context
  - roles: []sec.Role (empty yields an empty page)
  - params: pagination.Params

Returns:
  - []*User: the page
  - int: total matching rows
  - error: database failures
*/
func (repository *PostgresUserRepository) List(ctx context.Context, roles []sec.Role, params pagination.Params) ([]*User, int, error) {
	if len(roles) == 0 {
		return []*User{}, 0, nil
	}
	roleNames := sec.RoleStrings(roles)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ANY($1)", account.Table, account.Role)
	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, roleNames).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_count_failed: %w", err)
	}

	listQuery := fmt.Sprintf(
		"SELECT %s FROM %s WHERE %s = ANY($1) ORDER BY %s DESC, %s LIMIT $2 OFFSET $3",
		selectColumns, account.Table, account.Role, account.CreatedAt, account.ID,
	)
	rows, err := repository.pool.Query(ctx, listQuery, roleNames, params.Limit, params.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}
	defer rows.Close()

	users := make([]*User, 0, params.Limit)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("postgres_user_repo_list_scan_failed: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_user_repo_list_failed: %w", err)
	}

	return users, total, nil
}
