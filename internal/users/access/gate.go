// Copyright (c) 2026 Housika. All rights reserved.

package access

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/housika/housika-api/internal/platform/constants"
)

// ReservedRoleGate is the one-shot bootstrap flag for the reserved top role.
//
// It has two states, available and consumed. The transition is irreversible
// and there is no reset operation.
type ReservedRoleGate interface {
	// TryConsume flips the gate. It reports true to exactly one caller ever.
	TryConsume(ctx context.Context) (bool, error)
}

// # Redis

// RedisGate keeps the flag in the shared cache so every instance agrees.
type RedisGate struct {
	client redis.UniversalClient
	key    string
}

// NewRedisGate creates a gate backed by a compare-and-set on a dedicated key.
func NewRedisGate(client redis.UniversalClient) *RedisGate {
	return &RedisGate{client: client, key: constants.RedisKeyReservedRole}
}

// TryConsume runs SET NX without expiry. Only the first writer succeeds.
func (gate *RedisGate) TryConsume(ctx context.Context) (bool, error) {
	claimed, err := gate.client.SetNX(ctx, gate.key, time.Now().UTC().Format(time.RFC3339), 0).Result()
	if err != nil {
		return false, fmt.Errorf("redis_gate_consume_failed: %w", err)
	}
	return claimed, nil
}

// # Memory

// MemoryGate is the single-instance variant.
type MemoryGate struct {
	consumed atomic.Bool
}

// NewMemoryGate returns an available gate.
func NewMemoryGate() *MemoryGate {
	return &MemoryGate{}
}

// TryConsume flips the flag with a single compare-and-swap.
func (gate *MemoryGate) TryConsume(_ context.Context) (bool, error) {
	return gate.consumed.CompareAndSwap(false, true), nil
}
