package otpgate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryChallengeStore backs [ChallengeStore] with an in-process TTL cache.
// Intended for development and tests; SetIfAbsent is serialized with a
// mutex because go-cache's Add/Get pair is not atomic across goroutines
// with respect to our pending-challenge invariant.
type memoryChallengeStore struct {
	mu    sync.Mutex
	cache *gocache.Cache
}

// NewMemoryChallengeStore returns a process-local store with lazy expiry
// sweeps every minute.
func NewMemoryChallengeStore() ChallengeStore {
	return &memoryChallengeStore{
		cache: gocache.New(gocache.NoExpiration, time.Minute),
	}
}

func (s *memoryChallengeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(key)
	if !ok {
		return "", ErrChallengeNotFound
	}
	return v.(string), nil
}

func (s *memoryChallengeStore) SetIfAbsent(_ context.Context, key, digest string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.cache.Add(key, digest, ttl); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *memoryChallengeStore) Set(_ context.Context, key, digest string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Set(key, digest, ttl)
	return nil
}

func (s *memoryChallengeStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Delete(key)
	return nil
}

func (s *memoryChallengeStore) Ping(context.Context) error { return nil }

func (s *memoryChallengeStore) Close() error { return nil }
