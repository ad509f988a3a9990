// Copyright (c) 2026 Housika. All rights reserved.

package account_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/housika/housika-api/internal/platform/apperr"
	"github.com/housika/housika-api/internal/platform/mailer"
	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/account"
	"github.com/housika/housika-api/internal/users/auth"
	"github.com/housika/housika-api/internal/users/session"
	"github.com/housika/housika-api/pkg/pagination"
	"github.com/housika/housika-api/pkg/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeAccounts struct {
	mu    sync.Mutex
	users map[string]*auth.User
}

func (repository *fakeAccounts) find(match func(*auth.User) bool) (*auth.User, error) {
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

func (repository *fakeAccounts) FindByID(_ context.Context, id string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.ID == id })
}

func (repository *fakeAccounts) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.Email == email })
}

func (repository *fakeAccounts) FindByPhone(_ context.Context, phone string) (*auth.User, error) {
	return repository.find(func(user *auth.User) bool { return user.PhoneNumber == phone })
}

func (repository *fakeAccounts) Create(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	user.CreatedAt = time.Now()
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeAccounts) Update(_ context.Context, user *auth.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if _, ok := repository.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeAccounts) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()
	if _, ok := repository.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repository.users, id)
	return nil
}

func (repository *fakeAccounts) List(_ context.Context, roles []sec.Role, params pagination.Params) ([]*auth.User, int, error) {
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

type recordingMailer struct {
	mu       sync.Mutex
	messages []mailer.Message
}

func (recorder *recordingMailer) Send(_ context.Context, message mailer.Message) error {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	recorder.messages = append(recorder.messages, message)
	return nil
}

// # Fixture

type fixture struct {
	accounts *fakeAccounts
	sessions *session.Store
	mail     *recordingMailer
	service  *account.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	codec, err := sec.NewTokenCodec([]byte("0123456789abcdef0123456789abcdef"), "housika-test")
	require.NoError(t, err)

	f := &fixture{
		accounts: &fakeAccounts{users: make(map[string]*auth.User)},
		sessions: session.NewStore(codec, session.NewMemoryRegistry(), time.Hour, discardLogger()),
		mail:     &recordingMailer{},
	}
	f.service = account.NewService(f.accounts, f.sessions, f.mail, account.WelcomeSettings{
		Sender:   mailer.Sender{Address: "care@housika.co.ke", Name: "Housika Customer Care"},
		Branding: mailer.Branding{Brand: auth.Brand, SupportEmail: "care@housika.co.ke"},
		LoginURL: "https://housika.co.ke/login",
	}, discardLogger())
	return f
}

var seedSeq atomic.Int32

// seed stores an account with role and returns claims for it.
func (f *fixture) seed(t *testing.T, role sec.Role) *sec.SessionClaims {
	t.Helper()
	user := &auth.User{
		ID:          uuid.New(),
		Email:       fmt.Sprintf("%s-%d@housika.co.ke", role, seedSeq.Add(1)),
		PhoneNumber: fmt.Sprintf("+2547%08d", seedSeq.Add(1)),
		FullName:    string(role),
		Role:        role,
		Status:      auth.StatusActive,
	}
	require.NoError(t, f.accounts.Create(context.Background(), user))
	return &sec.SessionClaims{UserID: user.ID, Email: user.Email, Role: role}
}

// login starts a session for claims and returns its token.
func (f *fixture) login(t *testing.T, claims *sec.SessionClaims) string {
	t.Helper()
	issued, err := f.sessions.Login(context.Background(), claims.Principal())
	require.NoError(t, err)
	return issued.Token
}
