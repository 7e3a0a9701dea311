package otpgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testChallengeStore(t *testing.T, store ChallengeStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}

	ok, err := store.SetIfAbsent(ctx, "k", "v1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetIfAbsent: ok=%v err=%v", ok, err)
	}
	ok, err = store.SetIfAbsent(ctx, "k", "v2", time.Minute)
	if err != nil || ok {
		t.Fatalf("second SetIfAbsent must not store: ok=%v err=%v", ok, err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil || got != "v1" {
		t.Fatalf("Get: got=%q err=%v", got, err)
	}

	if err := store.Set(ctx, "k", "v3", time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got, _ := store.Get(ctx, "k"); got != "v3" {
		t.Fatalf("Set must replace, got %q", got)
	}

	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("deleting absent key must not fail: %v", err)
	}

}

func testChallengeStoreExpiry(t *testing.T, store ChallengeStore, ttl time.Duration, forward func(time.Duration)) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.SetIfAbsent(ctx, "ttl", "v", ttl); err != nil {
		t.Fatalf("SetIfAbsent failed: %v", err)
	}
	forward(ttl + ttl)
	if _, err := store.Get(ctx, "ttl"); !errors.Is(err, ErrChallengeNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
	// Expired slot is free again.
	if ok, err := store.SetIfAbsent(ctx, "ttl", "v2", time.Minute); err != nil || !ok {
		t.Fatalf("expired slot must be reusable: ok=%v err=%v", ok, err)
	}
}

func TestRedisChallengeStore(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb)
	t.Cleanup(func() { _ = store.Close() })

	testChallengeStore(t, store)
	testChallengeStoreExpiry(t, store, 30*time.Second, mr.FastForward)
}

func TestMemoryChallengeStore(t *testing.T) {
	store := NewMemoryChallengeStore()
	t.Cleanup(func() { _ = store.Close() })

	testChallengeStore(t, store)
	// go-cache expires on wall-clock time, so the TTL here is tiny and the
	// forward is a real sleep.
	testChallengeStoreExpiry(t, store, 20*time.Millisecond, time.Sleep)
}

func TestChallengeKeyNamespacing(t *testing.T) {
	a := challengeKey("otp", PurposeLogin, "alice@example.com")
	b := challengeKey("otp", PurposeSignup, "alice@example.com")
	if a == b {
		t.Fatal("purposes must not collide")
	}
	if a != "otp:login:alice@example.com" {
		t.Fatalf("unexpected key format %q", a)
	}
}
