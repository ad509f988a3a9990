// Copyright (c) 2026 Housika. All rights reserved.

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/housika/housika-api/internal/platform/constants"
	"github.com/housika/housika-api/internal/users/auth"
)

func TestCodeStore_Contract(t *testing.T) {
	stores := map[string]func(t *testing.T) auth.CodeStore{
		"memory": func(t *testing.T) auth.CodeStore { return auth.NewMemoryCodeStore() },
		"redis": func(t *testing.T) auth.CodeStore {
			server := miniredis.RunT(t)
			client := redis.NewClient(&redis.Options{Addr: server.Addr()})
			t.Cleanup(func() { _ = client.Close() })
			return auth.NewResetTokenStore(client)
		},
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			store := build(t)
			ctx := context.Background()

			_, err := store.Take(ctx, "missing")
			assert.ErrorIs(t, err, auth.ErrCodeNotFound)

			require.NoError(t, store.Put(ctx, "k", "v1", time.Hour))
			require.NoError(t, store.Put(ctx, "k", "v2", time.Hour))

			value, err := store.Take(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", value)

			_, err = store.Take(ctx, "k")
			assert.ErrorIs(t, err, auth.ErrCodeNotFound, "codes are single use")

			require.NoError(t, store.Put(ctx, "d", "v", time.Hour))
			require.NoError(t, store.Delete(ctx, "d"))
			require.NoError(t, store.Delete(ctx, "d"))
			_, err = store.Take(ctx, "d")
			assert.ErrorIs(t, err, auth.ErrCodeNotFound)
		})
	}
}

func TestRedisCodeStore_KeysAndExpiry(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()

	resetTokens := auth.NewResetTokenStore(client)
	otps := auth.NewOTPStore(client)

	require.NoError(t, resetTokens.Put(ctx, "abc", "user-1", time.Hour))
	require.NoError(t, otps.Put(ctx, "jane@housika.co.ke", "123456|abc", time.Hour))

	assert.True(t, server.Exists(constants.RedisPrefixResetToken+"abc"))
	assert.True(t, server.Exists(constants.RedisPrefixOTP+"jane@housika.co.ke"))

	server.FastForward(2 * time.Hour)

	_, err := resetTokens.Take(ctx, "abc")
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)
}

func TestMemoryCodeStore_Expiry(t *testing.T) {
	store := auth.NewMemoryCodeStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	_, err := store.Take(ctx, "k")
	assert.ErrorIs(t, err, auth.ErrCodeNotFound)
}
