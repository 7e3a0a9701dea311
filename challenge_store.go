package otpgate

import (
	"context"
	"errors"
	"time"
)

// ErrChallengeNotFound is returned by [ChallengeStore.Get] when no live
// value exists for a key; TTL expiry is lazy, so an expired entry reads as
// absent.
var ErrChallengeNotFound = errors.New("challenge not found")

// ChallengeStore is the injected TTL-keyed cache holding OTP digests. It
// has an explicit lifecycle: constructed at startup, closed on shutdown —
// never ambient module state.
//
// Keys are opaque to implementations; the engine namespaces them as
// {prefix}:{purpose}:{identity}.
type ChallengeStore interface {
	// Get returns the stored digest or [ErrChallengeNotFound].
	Get(ctx context.Context, key string) (string, error)

	// SetIfAbsent stores digest under key with ttl and reports whether the
	// write happened; false means a live value already exists.
	SetIfAbsent(ctx context.Context, key, digest string, ttl time.Duration) (bool, error)

	// Set stores digest unconditionally, replacing any live value.
	Set(ctx context.Context, key, digest string, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backing connection.
	Ping(ctx context.Context) error

	// Close releases the backing connection.
	Close() error
}

func challengeKey(prefix string, purpose Purpose, identity string) string {
	return prefix + ":" + string(purpose) + ":" + identity
}
