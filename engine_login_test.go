package otpgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestLoginUniformCredentialErrors(t *testing.T) {
	engine, _, users, _ := newTestEngine(t)
	ctx := context.Background()

	seedLocalUser(t, engine, users, "alice@example.com", "Sup3r-secret", true)

	// Unknown email and wrong password are indistinguishable.
	if err := engine.Login(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
	if err := engine.Login(ctx, "alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRejectsUnverified(t *testing.T) {
	engine, _, users, _ := newTestEngine(t)
	ctx := context.Background()

	seedLocalUser(t, engine, users, "alice@example.com", "Sup3r-secret", false)

	if err := engine.Login(ctx, "alice@example.com", "Sup3r-secret"); !errors.Is(err, ErrAccountUnverified) {
		t.Fatalf("expected ErrAccountUnverified, got %v", err)
	}
}

func TestLoginRejectsFederatedAccount(t *testing.T) {
	engine, _, users, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := users.Create(ctx, CreateUserInput{
		Username: "alice",
		Email:    "alice@example.com",
		Name:     "Alice Doe",
		Verified: true,
		Type:     AccountGoogle,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := engine.Login(ctx, "alice@example.com", "anything"); !errors.Is(err, ErrWrongAccountType) {
		t.Fatalf("expected ErrWrongAccountType, got %v", err)
	}
}

func TestLoginAndConfirm(t *testing.T) {
	engine, _, users, notifier := newTestEngine(t)
	ctx := context.Background()

	seeded := seedLocalUser(t, engine, users, "alice@example.com", "Sup3r-secret", true)

	if err := engine.Login(ctx, "alice@example.com", "Sup3r-secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	// Second login while the OTP lives is blocked.
	if err := engine.Login(ctx, "alice@example.com", "Sup3r-secret"); !errors.Is(err, ErrChallengePending) {
		t.Fatalf("expected ErrChallengePending, got %v", err)
	}

	code := notifier.lastCode("alice@example.com")
	if code == "" {
		t.Fatal("no login OTP delivered")
	}

	user, pair, err := engine.ConfirmLogin(ctx, "alice@example.com", code)
	if err != nil {
		t.Fatalf("ConfirmLogin failed: %v", err)
	}
	if user.ID != seeded.ID {
		t.Fatalf("confirmed wrong user: %s != %s", user.ID, seeded.ID)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a full session pair")
	}

	// Consumed on success: the same code cannot confirm twice.
	if _, _, err := engine.ConfirmLogin(ctx, "alice@example.com", code); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired on replay, got %v", err)
	}
}

func TestConfirmLoginExpired(t *testing.T) {
	engine, mr, users, notifier := newTestEngine(t)
	ctx := context.Background()

	seedLocalUser(t, engine, users, "alice@example.com", "Sup3r-secret", true)

	if err := engine.Login(ctx, "alice@example.com", "Sup3r-secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	code := notifier.lastCode("alice@example.com")

	mr.FastForward(engine.config.OTP.LoginTTL + time.Second)

	if _, _, err := engine.ConfirmLogin(ctx, "alice@example.com", code); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
}

func TestLoginNotifyFailureFreesSlot(t *testing.T) {
	engine, _, users, notifier := newTestEngine(t)
	ctx := context.Background()

	seedLocalUser(t, engine, users, "alice@example.com", "Sup3r-secret", true)

	notifier.setFail(true)
	if err := engine.Login(ctx, "alice@example.com", "Sup3r-secret"); !errors.Is(err, ErrNotifyFailed) {
		t.Fatalf("expected ErrNotifyFailed, got %v", err)
	}

	notifier.setFail(false)
	if err := engine.Login(ctx, "alice@example.com", "Sup3r-secret"); err != nil {
		t.Fatalf("retry after delivery failure blocked: %v", err)
	}
}
