package otpgate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestIssueChallengeExclusiveBlocksSecond(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.issueChallenge(ctx, PurposeLogin, "alice@example.com", true); err != nil {
		t.Fatalf("first issue failed: %v", err)
	}
	if _, err := engine.issueChallenge(ctx, PurposeLogin, "alice@example.com", true); !errors.Is(err, ErrChallengePending) {
		t.Fatalf("expected ErrChallengePending, got %v", err)
	}

	// A different purpose for the same identity is an independent slot.
	if _, err := engine.issueChallenge(ctx, PurposePasswordReset, "alice@example.com", true); err != nil {
		t.Fatalf("different purpose should issue: %v", err)
	}
}

func TestVerifyChallengeWrongCodeLeavesChallengeLive(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	code, err := engine.issueChallenge(ctx, PurposeLogin, "alice@example.com", true)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if err := engine.verifyChallenge(ctx, PurposeLogin, "alice@example.com", wrong); !errors.Is(err, ErrChallengeMismatch) {
		t.Fatalf("expected ErrChallengeMismatch, got %v", err)
	}

	// The correct code still works after a failed guess.
	if err := engine.verifyChallenge(ctx, PurposeLogin, "alice@example.com", code); err != nil {
		t.Fatalf("correct code rejected after failed guess: %v", err)
	}
}

func TestVerifyChallengeExpired(t *testing.T) {
	engine, mr, _, _ := newTestEngine(t)
	ctx := context.Background()

	code, err := engine.issueChallenge(ctx, PurposeLogin, "alice@example.com", true)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	mr.FastForward(engine.config.OTP.LoginTTL + time.Second)

	if err := engine.verifyChallenge(ctx, PurposeLogin, "alice@example.com", code); !errors.Is(err, ErrChallengeExpired) {
		t.Fatalf("expected ErrChallengeExpired, got %v", err)
	}
}

func TestVerifyChallengeRejectsNonNumeric(t *testing.T) {
	engine, _, _, _ := newTestEngine(t)
	ctx := context.Background()

	if _, err := engine.issueChallenge(ctx, PurposeLogin, "alice@example.com", true); err != nil {
		t.Fatalf("issue failed: %v", err)
	}
	if err := engine.verifyChallenge(ctx, PurposeLogin, "alice@example.com", "abc123"); !errors.Is(err, ErrChallengeMismatch) {
		t.Fatalf("expected ErrChallengeMismatch for non-numeric input, got %v", err)
	}
}

func TestResendOTPInvalidPurpose(t *testing.T) {
	engine, mr, _, notifier := newTestEngine(t)

	err := engine.ResendOTP(context.Background(), "carrier-pigeon", "alice@example.com")
	if !errors.Is(err, ErrInvalidPurpose) {
		t.Fatalf("expected ErrInvalidPurpose, got %v", err)
	}

	// The rejection happens before any challenge is generated or stored.
	if keys := mr.Keys(); len(keys) != 0 {
		t.Fatalf("rejected purpose wrote to the store: %v", keys)
	}
	if notifier.sentCount() != 0 {
		t.Fatalf("rejected purpose delivered %d notifications", notifier.sentCount())
	}
}

func TestResendOTPPendingWindow(t *testing.T) {
	engine, mr, _, notifier := newTestEngine(t)
	ctx := context.Background()

	if err := engine.ResendOTP(ctx, "login", "alice@example.com"); err != nil {
		t.Fatalf("first resend failed: %v", err)
	}
	if err := engine.ResendOTP(ctx, "login", "alice@example.com"); !errors.Is(err, ErrChallengePending) {
		t.Fatalf("expected ErrChallengePending, got %v", err)
	}

	mr.FastForward(engine.config.OTP.LoginTTL + time.Second)

	if err := engine.ResendOTP(ctx, "login", "alice@example.com"); err != nil {
		t.Fatalf("resend after expiry failed: %v", err)
	}
	if notifier.sentCount() != 2 {
		t.Fatalf("expected 2 deliveries, got %d", notifier.sentCount())
	}
}

func TestResendOTPNotifyFailureFreesSlot(t *testing.T) {
	engine, _, _, notifier := newTestEngine(t)
	ctx := context.Background()

	notifier.setFail(true)
	if err := engine.ResendOTP(ctx, "login", "alice@example.com"); !errors.Is(err, ErrNotifyFailed) {
		t.Fatalf("expected ErrNotifyFailed, got %v", err)
	}

	// The failed delivery must not leave a pending challenge behind.
	notifier.setFail(false)
	if err := engine.ResendOTP(ctx, "login", "alice@example.com"); err != nil {
		t.Fatalf("retry after delivery failure blocked: %v", err)
	}
}
