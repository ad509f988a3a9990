// Copyright (c) 2026 Housika. All rights reserved.

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"slices"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/mailer"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/access"
	"github.com/housika/housika-api/internal/users/auth"
	"github.com/housika/housika-api/internal/users/session"
	"github.com/housika/housika-api/pkg/pagination"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// # Fake user repository

type fakeUsers struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[string]*auth.User)}
}

func (repository *fakeUsers) find(match func(*auth.User) bool) (*auth.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, user := range repository.users {
		if match(user) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUsers) FindByID(_ context.Context, id string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.ID == id })
}

func (repository *fakeUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.Email == email })
}

func (repository *fakeUsers) FindByPhone(_ context.Context, phone string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.PhoneNumber == phone })
}

func (repository *fakeUsers) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	for _, existing := range repository.users {
		if existing.Email == user.Email || existing.PhoneNumber == user.PhoneNumber {
			return apperr.Conflict("User already exists")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeUsers) Update(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if _, ok := repository.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeUsers) UpdateRole(_ context.Context, userID string, role sec.Role) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user, ok := repository.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Role = role
	return nil
}

func (repository *fakeUsers) UpdatePassword(_ context.Context, userID, newHash string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user, ok := repository.users[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.PasswordHash = newHash
	return nil
}

func (repository *fakeUsers) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if _, ok := repository.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repository.users, id)
	return nil
}

func (repository *fakeUsers) List(_ context.Context, roles []sec.Role, params pagination.Params) ([]*auth.User, int, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	var matched []*auth.User
	for _, user := range repository.users {
		if slices.Contains(roles, user.Role) {
			clone := *user
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := len(matched)
	start := min(params.Offset(), total)
	end := min(start+params.Limit, total)
	return matched[start:end], total, nil
}

// # Recording mailer

type recordingMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
	err      error
}

func (recorder *recordingMailer) Send(_ context.Context, message mailer.Message) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.messages = append(recorder.messages, message)
	return recorder.err
}

func (recorder *recordingMailer) last(t *testing.T) mailer.Message {
	t.Helper()
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.NotEmpty(t, recorder.messages)
	return recorder.messages[len(recorder.messages)-1]
}

var (
	resetTokenPattern = regexp.MustCompile(`token=([0-9a-f]+)`)
	otpPattern        = regexp.MustCompile(`<strong>([0-9]+)</strong>`)
)

// resetCredentials pulls the reset token and OTP out of an email body.
func resetCredentials(t *testing.T, message mailer.Message) (string, string) {
	t.Helper()
	token := resetTokenPattern.FindStringSubmatch(message.HTMLBody)
	otp := otpPattern.FindStringSubmatch(message.HTMLBody)
	require.Len(t, token, 2)
	require.Len(t, otp, 2)
	return token[1], otp[1]
}

// # Fixture

type fixture struct {
	users    *fakeUsers
	sessions *session.Store
	mail     *recordingMailer
	service  *auth.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := sec.NewTokenCodec(testSecret, "housika-test")
	require.NoError(t, err)

	users := newFakeUsers()
	sessions := session.NewStore(codec, session.NewMemoryRegistry(), time.Hour, discardLogger())
	mail := &recordingMailer{}

	service := auth.NewService(
		users,
		auth.NewMemoryCodeStore(),
		auth.NewMemoryCodeStore(),
		sessions,
		access.NewResolver(access.NewMemoryGate()),
		mail,
		auth.MailSettings{
			Sender:      mailer.Sender{Address: "noreply@housika.co.ke", Name: auth.Brand},
			Branding:    mailer.Branding{Brand: auth.Brand, SupportEmail: "support@housika.co.ke"},
			FrontendURL: "https://housika.co.ke",
		},
		discardLogger(),
	)

	return &fixture{users: users, sessions: sessions, mail: mail, service: service}
}

func (f *fixture) register(t *testing.T, email, phone string, role sec.Role) *auth.SessionResult {
	t.Helper()
	result, err := f.service.Register(context.Background(), auth.RegisterInput{
		Email:       email,
		Password:    "correct-horse",
		PhoneNumber: phone,
		FullName:    "Test User",
		Role:        role,
	})
	require.NoError(t, err)
	return result
}
