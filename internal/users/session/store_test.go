// Copyright (c) 2026 Housika. All rights reserved.

package session_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/housika/housika-api/internal/platform/sec"
	"github.com/housika/housika-api/internal/users/session"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// registries returns one constructor per Registry implementation.
func registries(t *testing.T) map[string]func(t *testing.T) session.Registry {
	t.Helper()
	return map[string]func(t *testing.T) session.Registry{
		"memory": func(t *testing.T) session.Registry {
			return session.NewMemoryRegistry()
		},
		"redis": func(t *testing.T) session.Registry {
			server := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: server.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return session.NewRedisRegistry(client)
		},
	}
}

func newStore(t *testing.T, registry session.Registry) *session.Store {
	t.Helper()
	codec, err := sec.NewTokenCodec(testSecret, "housika-test")
	require.NoError(t, err)
	return session.NewStore(codec, registry, time.Hour, discardLogger())
}

func forEachRegistry(t *testing.T, fn func(t *testing.T, store *session.Store)) {
	for name, build := range registries(t) {
		t.Run(name, func(t *testing.T) {
			fn(t, newStore(t, build(t)))
		})
	}
}

/*
TestStore_RoundTrip: claims issued via Login resolve back unchanged.
*/
func TestStore_RoundTrip(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		ctx := context.Background()
		principal := sec.Principal{UserID: "u1", Email: "u1@housika.co.ke", Role: sec.RoleTenant}

		issued, err := store.Login(ctx, principal)
		require.NoError(t, err)

		claims, ok, err := store.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, principal, claims.Principal())
		assert.Equal(t, issued.TokenID, claims.TokenID())
	})
}

/*
TestStore_LogoutRevokes: a logged-out token no longer resolves although it
still verifies cryptographically.
*/
func TestStore_LogoutRevokes(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		ctx := context.Background()
		issued, err := store.Login(ctx, sec.Principal{UserID: "u1", Role: sec.RoleTenant})
		require.NoError(t, err)

		require.NoError(t, store.Logout(ctx, "u1", issued.TokenID))

		claims, ok, err := store.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, claims)

		// Removing twice is a no-op.
		assert.NoError(t, store.Logout(ctx, "u1", issued.TokenID))
	})
}

/*
TestStore_LogoutAllRevokesEverything: both tokens of a user die together.
*/
func TestStore_LogoutAllRevokesEverything(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		ctx := context.Background()
		principal := sec.Principal{UserID: "u1", Role: sec.RoleLandlord}

		first, err := store.Login(ctx, principal)
		require.NoError(t, err)
		second, err := store.Login(ctx, principal)
		require.NoError(t, err)

		require.NoError(t, store.LogoutAll(ctx, "u1"))

		for _, token := range []string{first.Token, second.Token} {
			_, ok, err := store.Resolve(ctx, token)
			require.NoError(t, err)
			assert.False(t, ok)
		}

		assert.NoError(t, store.LogoutAll(ctx, "nobody"))
	})
}

/*
TestStore_LoginInvalidatesPriorSessions: a second login kills the first token.
*/
func TestStore_LoginInvalidatesPriorSessions(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		ctx := context.Background()
		principal := sec.Principal{UserID: "u1", Role: sec.RoleTenant}

		first, err := store.Login(ctx, principal)
		require.NoError(t, err)
		second, err := store.Login(ctx, principal)
		require.NoError(t, err)

		_, ok, err := store.Resolve(ctx, first.Token)
		require.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = store.Resolve(ctx, second.Token)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

/*
TestStore_ReissueDropsStaleRole: after a role change the old token is dead
and the new one carries the new role.
*/
func TestStore_ReissueDropsStaleRole(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		ctx := context.Background()
		old, err := store.Login(ctx, sec.Principal{UserID: "u1", Role: sec.RoleTenant})
		require.NoError(t, err)

		fresh, err := store.Reissue(ctx, sec.Principal{UserID: "u1", Role: sec.RoleLandlord})
		require.NoError(t, err)

		_, ok, err := store.Resolve(ctx, old.Token)
		require.NoError(t, err)
		assert.False(t, ok)

		claims, ok, err := store.Resolve(ctx, fresh.Token)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, sec.RoleLandlord, claims.Role)
	})
}

/*
TestStore_Scenario: login, resolve, logoutAll, resolve.
*/
func TestStore_Scenario(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		ctx := context.Background()
		issued, err := store.Login(ctx, sec.Principal{UserID: "u1", Role: sec.RoleTenant})
		require.NoError(t, err)

		claims, ok, err := store.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "u1", claims.UserID)
		assert.Equal(t, sec.RoleTenant, claims.Role)

		require.NoError(t, store.LogoutAll(ctx, "u1"))

		_, ok, err = store.Resolve(ctx, issued.Token)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

/*
TestStore_ResolveRejectsGarbage: unverifiable input never reaches the registry.
*/
func TestStore_ResolveRejectsGarbage(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		claims, ok, err := store.Resolve(context.Background(), "garbage")
		assert.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, claims)
	})
}

/*
TestStore_ConcurrentLoginsLeaveOneSession: racing logins for one user end
with exactly one live token.
*/
func TestStore_ConcurrentLoginsLeaveOneSession(t *testing.T) {
	forEachRegistry(t, func(t *testing.T, store *session.Store) {
		ctx := context.Background()
		principal := sec.Principal{UserID: "u1", Role: sec.RoleTenant}

		const workers = 16
		tokens := make([]string, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				issued, err := store.Login(ctx, principal)
				if err == nil {
					tokens[i] = issued.Token
				}
			}(i)
		}
		wg.Wait()

		live := 0
		for _, token := range tokens {
			require.NotEmpty(t, token)
			_, ok, err := store.Resolve(ctx, token)
			require.NoError(t, err)
			if ok {
				live++
			}
		}
		assert.Equal(t, 1, live)
	})
}

/*
TestStore_RegistryUnavailableFailsClosed: a dead cache is an error, not a pass.
*/
func TestStore_RegistryUnavailableFailsClosed(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := newStore(t, session.NewRedisRegistry(client))

	ctx := context.Background()
	issued, err := store.Login(ctx, sec.Principal{UserID: "u1", Role: sec.RoleTenant})
	require.NoError(t, err)

	server.Close()

	claims, ok, err := store.Resolve(ctx, issued.Token)
	assert.ErrorIs(t, err, session.ErrRegistryUnavailable)
	assert.False(t, ok)
	assert.Nil(t, claims)

	_, err = store.Login(ctx, sec.Principal{UserID: "u1", Role: sec.RoleTenant})
	assert.ErrorIs(t, err, session.ErrRegistryUnavailable)
}
