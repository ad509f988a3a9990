// Copyright (c) 2026 Housika. All rights reserved.

/*
Package redis provides the shared cache client.

The cache holds every piece of auth state that must be visible to all API
instances at once:

  - the per-user session registry (auth:sessions:<userID>)
  - the one-shot bootstrap flag for the reserved role
  - password-reset tokens and OTPs, which expire after an hour
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Timeouts are tighter than the registry deadline so a slow node surfaces as
// an error instead of a hung request.
const (
	dialTimeout  = 3 * time.Second
	readTimeout  = time.Second
	writeTimeout = time.Second
	pingTimeout  = 2 * time.Second
	poolSize     = 20
	minIdleConns = 4
)

// NewClient parses a Redis URL and returns a connected client.
//
// # Parameters
//   - ctx: Context for the initial ping.
//   - redisURL: redis:// or rediss:// connection URL.
//   - logger: Structured logger for connection events.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	// Session and gate operations wrap their own deadlines.
	options.ContextTimeoutEnabled = true

	client := redis.NewClient(options)

	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("redis_client_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// Ping verifies that the cache answers within pingTimeout.
func Ping(ctx context.Context, client redis.UniversalClient) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
