// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

/*
Package redis manages the Redis client lifecycle.

Redis holds only volatile security material (password-reset tokens with a
TTL). Sessions and accounts live in PostgreSQL; losing Redis invalidates
outstanding reset links and nothing else.
*/
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// connectTimeout bounds the initial connect-and-ping handshake.
const connectTimeout = 5 * time.Second

/*
NewClient establishes a Redis client from the given URL and verifies
connectivity with a ping before returning.

Parameters:
  - ctx: context.Context for the initial handshake
  - redisURL: Redis connection string (redis://...)

Returns:
  - *redis.Client: A ready-to-use client
  - error: If the URL is malformed or the server is unreachable
*/
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {

	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping failed: %w", err)
	}

	return client, nil
}
