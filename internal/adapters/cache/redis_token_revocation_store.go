package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTokenRevocationStore deny-lists access token ids until the token
// would have expired anyway.
type RedisTokenRevocationStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisTokenRevocationStore(client *redis.Client) *RedisTokenRevocationStore {
	return &RedisTokenRevocationStore{client: client, now: time.Now}
}

func (s *RedisTokenRevocationStore) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := until.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (s *RedisTokenRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func revokedKey(tokenID string) string {
	return "brandhub:revoked:" + tokenID
}
