// Copyright (c) 2026 Housika. All rights reserved.

package notify_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/housika/housika-api/internal/notify"
	"github.com/housika/housika-api/internal/platform/constants"
	"github.com/housika/housika-api/internal/platform/mailer"
	"github.com/housika/housika-api/internal/platform/middleware"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/session"
)

var (
	adminSender = mailer.Sender{Address: "admin@housika.co.ke", Name: "Housika Admin Desk"}
	careSender  = mailer.Sender{Address: "customercare@housika.co.ke", Name: "Housika Customer Care"}
)

type recordingMailer struct {
	mu       sync.Mutex
	err      error
	messages []mailer.Message
}

func (recorder *recordingMailer) Send(_ context.Context, message mailer.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if recorder.err != nil {
		return recorder.err
	}
	recorder.messages = append(recorder.messages, message)
	return nil
}

type fixture struct {
	sessions *session.Store
	mail     *recordingMailer
	server   http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	codec, err := sec.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), "housika-test")
	require.NoError(t, err)

	f := &fixture{
		sessions: session.NewStore(codec, session.NewMemoryRegistry(), time.Hour, logger),
		mail:     &recordingMailer{},
	}
	service := notify.NewService(f.mail, mailer.Branding{Brand: "Housika", SupportEmail: "admin@housika.co.ke"}, logger)
	f.server = notify.NewHandler(service, middleware.Authenticate(f.sessions),
		notify.AdminDesk(adminSender), notify.CustomerCareDesk(careSender)).Routes()
	return f
}

func (f *fixture) token(t *testing.T, role sec.Role) string {
	t.Helper()
	issued, err := f.sessions.Login(context.Background(), sec.Principal{
		UserID: string(role) + "-1", Email: string(role) + "@housika.co.ke", Role: role,
	})
	require.NoError(t, err)
	return issued.Token
}

func (f *fixture) post(t *testing.T, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	if token != "" {
		request.Header.Set(constants.HeaderAuthorization, "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	f.server.ServeHTTP(recorder, request)
	return recorder
}

const validNotice = `{"to":"owner@example.com","message":"Your listing was approved.","time":"2026-03-03T09:00:00Z"}`

/*
TestHTTP_DeskRoleGates: each desk is open to its own role only.
*/
func TestHTTP_DeskRoleGates(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		path   string
		role   sec.Role
		status int
	}{
		{"admin_writes_admin", "/admin", sec.RoleAdmin, http.StatusOK},
		{"care_blocked_from_admin", "/admin", sec.RoleCustomerCare, http.StatusForbidden},
		{"tenant_blocked_from_admin", "/admin", sec.RoleTenant, http.StatusForbidden},
		{"care_writes_care", "/customer-care", sec.RoleCustomerCare, http.StatusOK},
		{"admin_blocked_from_care", "/customer-care", sec.RoleAdmin, http.StatusForbidden},
		{"landlord_blocked_from_care", "/customer-care", sec.RoleLandlord, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := f.post(t, tt.path, validNotice, f.token(t, tt.role))
			assert.Equal(t, tt.status, recorder.Code, recorder.Body.String())
		})
	}

	assert.Equal(t, http.StatusUnauthorized, f.post(t, "/admin", validNotice, "").Code)
	assert.Len(t, f.mail.messages, 2)
}

func TestHTTP_SendUsesDeskSender(t *testing.T) {
	f := newFixture(t)

	recorder := f.post(t, "/customer-care", validNotice, f.token(t, sec.RoleCustomerCare))
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	require.Len(t, f.mail.messages, 1)
	message := f.mail.messages[0]
	assert.Equal(t, careSender, message.From)
	assert.Equal(t, "owner@example.com", message.To)
	assert.Equal(t, "Housika Customer Care notice, 3 March 2026", message.Subject)
	assert.Contains(t, message.HTMLBody, "Your listing was approved.")
}

func TestHTTP_SendValidation(t *testing.T) {
	f := newFixture(t)
	token := f.token(t, sec.RoleAdmin)

	tests := []struct {
		name string
		body string
	}{
		{"missing_fields", `{}`},
		{"bad_recipient", `{"to":"nope","message":"hi","time":"2026-03-03T09:00:00Z"}`},
		{"bad_time", `{"to":"owner@example.com","message":"hi","time":"yesterday"}`},
		{"oversized_message", `{"to":"owner@example.com","message":"` + strings.Repeat("a", notify.MaxMessageLength+1) + `","time":"2026-03-03T09:00:00Z"}`},
		{"invalid_json", `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, f.post(t, "/admin", tt.body, token).Code)
		})
	}
	assert.Empty(t, f.mail.messages)
}

func TestHTTP_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.mail.err = errors.New("zepto down")

	recorder := f.post(t, "/admin", validNotice, f.token(t, sec.RoleAdmin))
	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
