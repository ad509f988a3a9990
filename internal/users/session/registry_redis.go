// Copyright (c) 2026 Housika. All rights reserved.

package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/housika/housika-api/internal/platform/constants"
)

// RedisRegistry implements Registry with one Redis SET per user.
//
// The key's expiry is pushed to the newest token's expiry on every write.
// All tokens share one TTL, so the newest token is always the longest lived.
type RedisRegistry struct {
	client redis.UniversalClient
}

// NewRedisRegistry creates a new Redis-backed Registry.
func NewRedisRegistry(client redis.UniversalClient) *RedisRegistry {
	return &RedisRegistry{client: client}
}

func sessionKey(userID string) string {
	return constants.RedisPrefixSession + userID
}

/*
Add records a live token and extends the user's key expiry.

Parameters:
  - ctx: context.Context
  - userID: string
  - tokenID: string
  - expiresAt: time.Time

Returns:
  - error: ErrRegistryUnavailable on failure
*/
func (registry *RedisRegistry) Add(ctx context.Context, userID, tokenID string, expiresAt time.Time) error {
	key := sessionKey(userID)

	_, err := registry.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, key, tokenID)
		pipe.PExpireAt(ctx, key, expiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: redis_session_add_failed: %v", ErrRegistryUnavailable, err)
	}

	return nil
}

/*
Replace drops every token of the user and records tokenID in one MULTI/EXEC.

Parameters:
  - ctx: context.Context
  - userID: string
  - tokenID: string
  - expiresAt: time.Time

Returns:
  - error: ErrRegistryUnavailable on failure
*/
func (registry *RedisRegistry) Replace(ctx context.Context, userID, tokenID string, expiresAt time.Time) error {
	key := sessionKey(userID)

	_, err := registry.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.SAdd(ctx, key, tokenID)
		pipe.PExpireAt(ctx, key, expiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: redis_session_replace_failed: %v", ErrRegistryUnavailable, err)
	}

	return nil
}

// RemoveOne removes a single token from the user's set.
func (registry *RedisRegistry) RemoveOne(ctx context.Context, userID, tokenID string) error {
	if err := registry.client.SRem(ctx, sessionKey(userID), tokenID).Err(); err != nil {
		return fmt.Errorf("%w: redis_session_remove_failed: %v", ErrRegistryUnavailable, err)
	}
	return nil
}

// RemoveAll deletes the user's set.
func (registry *RedisRegistry) RemoveAll(ctx context.Context, userID string) error {
	if err := registry.client.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: redis_session_remove_all_failed: %v", ErrRegistryUnavailable, err)
	}
	return nil
}

// IsLive checks set membership.
func (registry *RedisRegistry) IsLive(ctx context.Context, userID, tokenID string) (bool, error) {
	live, err := registry.client.SIsMember(ctx, sessionKey(userID), tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("%w: redis_session_lookup_failed: %v", ErrRegistryUnavailable, err)
	}
	return live, nil
}
