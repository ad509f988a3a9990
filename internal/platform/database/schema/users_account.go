// Copyright (c) 2026 Housika. All rights reserved.

// Package schema names the tables and columns the repositories query.
package schema

// UserAccountTable represents the 'users.account' table.
type UserAccountTable struct {
	Table         string
	ID            string
	Email         string
	PasswordHash  string
	PhoneNumber   string
	FullName      string
	Role          string
	Status        string
	EmailVerified string
	CreatedBy     string
	UpdatedBy     string
	CreatedAt     string
	UpdatedAt     string
}

// UserAccount is the schema definition for users.account.
var UserAccount = UserAccountTable{
	Table:         "users.account",
	ID:            "id",
	Email:         "email",
	PasswordHash:  "password_hash",
	PhoneNumber:   "phone_number",
	FullName:      "full_name",
	Role:          "role",
	Status:        "status",
	EmailVerified: "email_verified",
	CreatedBy:     "created_by",
	UpdatedBy:     "updated_by",
	CreatedAt:     "created_at",
	UpdatedAt:     "updated_at",
}

// Columns returns the selectable columns in scan order.
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.PasswordHash, t.PhoneNumber, t.FullName, t.Role,
		t.Status, t.EmailVerified, t.CreatedBy, t.UpdatedBy, t.CreatedAt, t.UpdatedAt,
	}
}
