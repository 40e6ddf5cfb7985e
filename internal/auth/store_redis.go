// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package auth

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/giftme/giftme/internal/platform/constants"
)

// RedisOobThrottle implements [OobThrottle] on Redis.
//
// # Mechanism
//
// SET NX with a TTL: the first sender in a window claims the key atomically,
// everyone else is refused until the key expires. Redis owns the expiry, so
// there is no cleanup job and no race between check and claim.
type RedisOobThrottle struct {
	client *redis.Client
}

// NewRedisOobThrottle creates the Redis implementation of [OobThrottle].
func NewRedisOobThrottle(client *redis.Client) *RedisOobThrottle {
	return &RedisOobThrottle{client: client}
}

// Allow claims the throttle window for the email if it is free.
func (throttle *RedisOobThrottle) Allow(ctx context.Context, email string) (bool, error) {
	key := constants.RedisPrefixOobThrottle + email

	claimed, err := throttle.client.SetNX(ctx, key, 1, constants.OobThrottleWindow).Result()
	if err != nil {
		return false, fmt.Errorf("redis_oob_throttle_claim_failed: %w", err)
	}

	return claimed, nil
}
