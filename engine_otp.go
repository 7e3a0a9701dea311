package otpgate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/otpgate/otpgate/internal"
)

// issueChallenge generates a fresh code, stores only its digest, and returns
// the plaintext for the notifier. With exclusive set, a live challenge for
// the same (purpose, identity) pair blocks issuance; otherwise the new
// digest replaces whatever was stored.
func (e *Engine) issueChallenge(ctx context.Context, purpose Purpose, email string, exclusive bool) (string, error) {
	code, err := internal.NewOTP(e.config.OTP.Digits)
	if err != nil {
		return "", fmt.Errorf("otp generation: %w", err)
	}

	digest, err := e.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("otp digest: %w", err)
	}

	key := challengeKey(e.config.OTP.KeyPrefix, purpose, email)
	ttl := e.config.OTP.TTL(purpose)

	if exclusive {
		stored, err := e.challenges.SetIfAbsent(ctx, key, digest, ttl)
		if err != nil {
			return "", err
		}
		if !stored {
			e.metricInc(MetricOTPPendingRejected)
			return "", ErrChallengePending
		}
	} else {
		if err := e.challenges.Set(ctx, key, digest, ttl); err != nil {
			return "", err
		}
	}

	e.metricInc(MetricOTPIssued)
	return code, nil
}

// verifyChallenge checks candidate against the stored digest. The challenge
// is never deleted here: a wrong guess must not consume the live code.
func (e *Engine) verifyChallenge(ctx context.Context, purpose Purpose, email, candidate string) error {
	if !internal.IsNumericString(candidate) || len(candidate) != e.config.OTP.Digits {
		e.metricInc(MetricOTPVerifyFailure)
		return ErrChallengeMismatch
	}

	key := challengeKey(e.config.OTP.KeyPrefix, purpose, email)
	digest, err := e.challenges.Get(ctx, key)
	if errors.Is(err, ErrChallengeNotFound) {
		e.metricInc(MetricOTPExpired)
		return ErrChallengeExpired
	}
	if err != nil {
		return err
	}

	start := time.Now()
	ok, err := e.hasher.Verify(candidate, digest)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	if err != nil {
		return fmt.Errorf("otp digest verify: %w", err)
	}
	if !ok {
		e.metricInc(MetricOTPVerifyFailure)
		return ErrChallengeMismatch
	}

	e.metricInc(MetricOTPVerifySuccess)
	return nil
}

// dropChallenge removes a consumed challenge. Best-effort: the TTL bounds
// the damage if the delete fails.
func (e *Engine) dropChallenge(ctx context.Context, purpose Purpose, email string) {
	key := challengeKey(e.config.OTP.KeyPrefix, purpose, email)
	_ = e.challenges.Delete(ctx, key)
}

// ResendOTP re-issues a challenge for the given purpose tag. A live
// challenge blocks re-issuance until it expires; delivery is awaited, and
// the stored challenge is discarded when delivery fails so the caller can
// retry immediately.
func (e *Engine) ResendOTP(ctx context.Context, purposeTag, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	purpose, err := ParsePurpose(purposeTag)
	if err != nil {
		e.metricInc(MetricResendInvalidPurpose)
		return err
	}

	code, err := e.issueChallenge(ctx, purpose, email, true)
	if err != nil {
		e.emitAudit(ctx, AuditEventResend, purpose, email, "", err)
		return err
	}

	if err := e.notifier.SendOTP(ctx, email, code); err != nil {
		e.metricInc(MetricNotifyFailure)
		e.dropChallenge(ctx, purpose, email)
		e.emitAudit(ctx, AuditEventNotify, purpose, email, "", err)
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	e.metricInc(MetricResendRequest)
	e.emitAudit(ctx, AuditEventResend, purpose, email, "", nil)
	return nil
}
