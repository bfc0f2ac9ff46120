package ports

import (
	"context"
	"time"
)

// RateLimiter counts hits per scope and key in fixed windows. Allow returns
// domain.ErrRateLimited once limit is exceeded inside the current window.
type RateLimiter interface {
	Allow(ctx context.Context, scope, key string, limit int, window time.Duration) error
}

// TokenRevocationStore deny-lists access tokens by id until their natural expiry.
type TokenRevocationStore interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
