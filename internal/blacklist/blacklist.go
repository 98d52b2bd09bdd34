// Package blacklist revokes access tokens before their natural expiry.
// Access tokens verify offline, so logout and password reset need a
// server-side veto; Redis TTLs keep the set bounded to the token lifetime.
package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist manages revoked access tokens in Redis. A nil *TokenBlacklist
// is valid and disables all checks.
type TokenBlacklist struct {
	redis *redis.Client
}

// NewTokenBlacklist returns a blacklist backed by the given Redis client.
func NewTokenBlacklist(redisClient *redis.Client) *TokenBlacklist {
	return &TokenBlacklist{redis: redisClient}
}

// AddToken blacklists a single access token by jti until expiresAt. Tokens
// already past expiry are ignored.
func (b *TokenBlacklist) AddToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if b == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	key := fmt.Sprintf("blacklist:token:%s", jti)
	if err := b.redis.Set(ctx, key, "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

// BlacklistUser invalidates every access token issued to the user before now.
// ttl should exceed the access token lifetime.
func (b *TokenBlacklist) BlacklistUser(ctx context.Context, userID string, ttl time.Duration) error {
	if b == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	key := fmt.Sprintf("blacklist:user:%s", userID)
	return b.redis.Set(ctx, key, time.Now().Unix(), ttl).Err()
}

// IsBlacklisted reports whether the token (by jti) or all of the user's
// tokens issued at issuedAt have been revoked.
func (b *TokenBlacklist) IsBlacklisted(ctx context.Context, userID, jti string, issuedAt time.Time) (bool, error) {
	if b == nil {
		return false, nil
	}
	exists, err := b.redis.Exists(ctx, fmt.Sprintf("blacklist:token:%s", jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	if exists > 0 {
		return true, nil
	}

	timestamp, err := b.redis.Get(ctx, fmt.Sprintf("blacklist:user:%s", userID)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	// Tokens issued before the user-wide invalidation marker are revoked.
	return issuedAt.Before(time.Unix(timestamp, 0)), nil
}
