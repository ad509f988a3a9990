// Copyright (c) 2026 Housika. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/housika/housika-api/internal/platform/constants"
)

// RedisCodeStore implements [CodeStore] with plain string keys under a prefix.
type RedisCodeStore struct {
	client redis.UniversalClient
	prefix string
}

// NewResetTokenStore keeps password reset tokens, keyed by the token itself.
func NewResetTokenStore(client redis.UniversalClient) *RedisCodeStore {
	return &RedisCodeStore{client: client, prefix: constants.RedisPrefixResetToken}
}

// NewOTPStore keeps one-time passcodes, keyed by email.
func NewOTPStore(client redis.UniversalClient) *RedisCodeStore {
	return &RedisCodeStore{client: client, prefix: constants.RedisPrefixOTP}
}

/*
Put stores value under key with the given TTL.

Parameters:
  - ctx: context.Context
  - key: string
  - value: string
  - ttl: time.Duration

Returns:
  - error: Execution errors
*/
func (repository *RedisCodeStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := repository.client.Set(ctx, repository.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis_code_put_failed: %w", err)
	}
	return nil
}

/*
Take reads and deletes the value with GETDEL, so a code is usable once.

Returns:
  - string: stored value
  - error: ErrCodeNotFound or connectivity errors
*/
func (repository *RedisCodeStore) Take(ctx context.Context, key string) (string, error) {
	value, err := repository.client.GetDel(ctx, repository.prefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCodeNotFound
		}
		return "", fmt.Errorf("redis_code_take_failed: %w", err)
	}
	return value, nil
}

// Delete removes the key.
func (repository *RedisCodeStore) Delete(ctx context.Context, key string) error {
	if err := repository.client.Del(ctx, repository.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis_code_delete_failed: %w", err)
	}
	return nil
}
