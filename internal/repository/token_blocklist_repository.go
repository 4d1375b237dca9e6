package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedTokenPrefix = "auth:revoked:"

// TokenBlocklist records revoked access token ids until they would expire anyway.
// Without Redis nothing is ever revoked.
type TokenBlocklist struct {
	client *redis.Client
}

// NewTokenBlocklist constructs the blocklist.
func NewTokenBlocklist(client *redis.Client) *TokenBlocklist {
	return &TokenBlocklist{client: client}
}

// Revoke blocks jti for ttl.
func (b *TokenBlocklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if b.client == nil || jti == "" || ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, revokedTokenPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti was revoked.
func (b *TokenBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if b.client == nil || jti == "" {
		return false, nil
	}
	n, err := b.client.Exists(ctx, revokedTokenPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("check revoked token: %w", err)
	}
	return n > 0, nil
}
