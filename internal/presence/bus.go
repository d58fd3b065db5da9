// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package presence implements the optional Redis-backed presence and
// notification bus (spec.md §2, §6; SPEC_FULL.md §2.5, §3). It is
// diagnostic only: the directory and relay path must behave identically
// whether or not a bus is configured (spec.md §1).
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nymproject/directory-relay/internal/logger"
)

const presenceKeyPrefix = "nym-directory:presence:"

// Bus publishes user online/offline state to Redis and answers presence
// queries, mirroring the connect/publish/subscribe/presence-TTL shape of
// the original implementation's Redis manager (SPEC_FULL.md §2.5).
type Bus struct {
	client *redis.Client
	log    *logger.Logger
}

// Connect dials redisURL. Returns (nil, nil) when redisURL is empty,
// signalling the caller to run without a presence bus.
func Connect(ctx context.Context, redisURL string, log *logger.Logger) (*Bus, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("presence: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("presence: ping redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Msg("presence bus connected")
	return &Bus{client: client, log: log}, nil
}

// SetOnline marks username as online with a TTL so a crashed process
// without a clean shutdown eventually ages out of presence.
func (b *Bus) SetOnline(ctx context.Context, username string, ttl time.Duration) error {
	return b.client.Set(ctx, presenceKeyPrefix+username, "1", ttl).Err()
}

// SetOffline removes username's presence entry immediately.
func (b *Bus) SetOffline(ctx context.Context, username string) error {
	return b.client.Del(ctx, presenceKeyPrefix+username).Err()
}

// OnlineCount scans for currently-online presence keys. It is used only
// by the heartbeat worker and the operator stats surface, never by the
// directory/relay correctness path.
func (b *Bus) OnlineCount(ctx context.Context) (int, error) {
	var count int
	iter := b.client.Scan(ctx, 0, presenceKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("presence: scan online users: %w", err)
	}
	return count, nil
}

// Publish broadcasts a notification on channel, used for cross-instance
// fan-out in multi-server deployments (not required by a single-instance
// deployment, but kept since the bus is general-purpose pub/sub).
func (b *Bus) Publish(ctx context.Context, channel, message string) error {
	return b.client.Publish(ctx, channel, message).Err()
}

// Close releases the underlying Redis connection pool.
func (b *Bus) Close() error {
	return b.client.Close()
}
