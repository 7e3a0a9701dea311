package otpgate

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisChallengeStore backs [ChallengeStore] with Redis. TTL enforcement is
// the server's: a read after expiry returns redis.Nil.
type redisChallengeStore struct {
	client *redis.Client
}

// NewRedisChallengeStore wraps an existing client. The caller owns client
// configuration; Close releases it.
func NewRedisChallengeStore(client *redis.Client) ChallengeStore {
	return &redisChallengeStore{client: client}
}

func (s *redisChallengeStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrChallengeNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return val, nil
}

func (s *redisChallengeStore) SetIfAbsent(ctx context.Context, key, digest string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, key, digest, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ok, nil
}

func (s *redisChallengeStore) Set(ctx context.Context, key, digest string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, digest, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *redisChallengeStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *redisChallengeStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *redisChallengeStore) Close() error {
	return s.client.Close()
}
