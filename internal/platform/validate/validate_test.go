// Copyright (c) 2026 Housika. All rights reserved.

package validate_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/platform/validate"
)

// failedFields lists the fields reported by err, in order.
func failedFields(t *testing.T, err error) []string {
	t.Helper()
	if err == nil {
		return nil
	}
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)

	fields := make([]string, len(appErr.Details))
	for index, detail := range appErr.Details {
		fields[index] = detail.Field
	}
	return fields
}

type signUp struct {
	email, password, phone, name string
	role                         sec.Role
}

// check applies the rules a sign-up form goes through.
func (form signUp) check() error {
	v := &validate.Validator{}
	return v.Required("email", form.email).Email("email", form.email).
		MinLen("password", form.password, 8).
		Phone("phone_number", form.phone).
		Required("full_name", form.name).MaxLen("full_name", form.name, 20).
		Role("role", form.role).
		Err()
}

/*
TestValidator_SignUpForm runs whole sign-up payloads and checks which fields
fail. Errors accumulate instead of stopping at the first one.
*/
func TestValidator_SignUpForm(t *testing.T) {
	valid := signUp{"wanjiru@housika.co.ke", "correct-horse", "+254712345678", "Wanjiru Kamau", sec.RoleTenant}

	tests := []struct {
		name   string
		mutate func(*signUp)
		fields []string
	}{
		{"valid", func(*signUp) {}, nil},
		{"missing_email", func(f *signUp) { f.email = "" }, []string{"email", "email"}},
		{"email_without_domain", func(f *signUp) { f.email = "wanjiru@" }, []string{"email"}},
		{"short_password", func(f *signUp) { f.password = "kodi" }, []string{"password"}},
		{"local_phone_with_dashes", func(f *signUp) { f.phone = "0712-345-678" }, []string{"phone_number"}},
		{"blank_name", func(f *signUp) { f.name = "   " }, []string{"full_name"}},
		{"unknown_role", func(f *signUp) { f.role = "wizard" }, []string{"role"}},
		{"everything_wrong", func(f *signUp) { *f = signUp{email: "x", password: "1", phone: "1", role: "x"} },
			[]string{"email", "password", "phone_number", "full_name", "role"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			assert.Equal(t, tt.fields, failedFields(t, form.check()))
		})
	}
}

func TestValidator_Phone(t *testing.T) {
	for _, phone := range []string{"+254712345678", "254712345678", "0712345678", "+14155550123"} {
		assert.False(t, (&validate.Validator{}).Phone("phone_number", phone).HasErrors(), phone)
	}
	for _, phone := range []string{"", "0712", "+254 712 345 678", "+2547123456789012", "phone"} {
		assert.True(t, (&validate.Validator{}).Phone("phone_number", phone).HasErrors(), phone)
	}
}

/*
TestValidator_RoleListsChoices: the message names every canonical role so
clients can recover from a typo.
*/
func TestValidator_RoleListsChoices(t *testing.T) {
	for _, role := range sec.Hierarchy() {
		assert.NoError(t, (&validate.Validator{}).Role("role", role).Err(), role)
	}

	appErr := apperr.As((&validate.Validator{}).Role("role", "customer care").Err())
	require.NotNil(t, appErr)
	for _, role := range sec.Hierarchy() {
		assert.Contains(t, appErr.Details[0].Message, string(role))
	}
}

func TestValidator_LengthCountsCharacters(t *testing.T) {
	name := strings.Repeat("ü", 20)
	assert.False(t, (&validate.Validator{}).MaxLen("full_name", name, 20).HasErrors())
	assert.True(t, (&validate.Validator{}).MaxLen("full_name", name+"a", 20).HasErrors())
	assert.True(t, (&validate.Validator{}).MinLen("password", "kodi🏠", 8).HasErrors())
}

func TestValidator_IdentifiersAndChoices(t *testing.T) {
	err := (&validate.Validator{}).
		UUID("id", "0190a3c2-7b1e-7000-8000-000000000001").
		OneOf("status", "ACTIVE", "ACTIVE", "UNCONFIRMED").
		Err()
	assert.NoError(t, err)

	err = (&validate.Validator{}).
		UUID("id", "listing-42").
		OneOf("status", "BANNED", "ACTIVE", "UNCONFIRMED").
		Custom("new_password", true, "Must differ from the current password").
		Err()
	assert.Equal(t, []string{"id", "status", "new_password"}, failedFields(t, err))
}

func TestRequiredError(t *testing.T) {
	err := validate.RequiredError("token", "Provide a reset token or an email and code")
	assert.Equal(t, []string{"token"}, failedFields(t, err))
	assert.Equal(t, http.StatusBadRequest, validate.ErrInvalidJSON.HTTPStatus)
}
