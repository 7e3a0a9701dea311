package otpgate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Login runs the first login step: credential check, then OTP dispatch. The
// "no such user" and "wrong password" outcomes collapse into a single
// [ErrInvalidCredentials] so the response never reveals which field was
// wrong. Delivery is awaited; a send failure discards the stored challenge
// so the user can retry at once.
func (e *Engine) Login(ctx context.Context, email, pass string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditEventLogin, PurposeLogin, email, "", ErrInvalidCredentials)
		return ErrInvalidCredentials
	}
	if err != nil {
		return err
	}

	if !user.Verified {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditEventLogin, PurposeLogin, email, user.ID, ErrAccountUnverified)
		return ErrAccountUnverified
	}
	if user.Type != AccountLocal {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditEventLogin, PurposeLogin, email, user.ID, ErrWrongAccountType)
		return ErrWrongAccountType
	}

	start := time.Now()
	ok, err := e.hasher.Verify(pass, user.PasswordHash)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))
	if err != nil {
		return fmt.Errorf("password digest verify: %w", err)
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, AuditEventLogin, PurposeLogin, email, user.ID, ErrInvalidCredentials)
		return ErrInvalidCredentials
	}

	code, err := e.issueChallenge(ctx, PurposeLogin, email, true)
	if err != nil {
		e.emitAudit(ctx, AuditEventLogin, PurposeLogin, email, user.ID, err)
		return err
	}

	if err := e.notifier.SendOTP(ctx, email, code); err != nil {
		e.metricInc(MetricNotifyFailure)
		e.dropChallenge(ctx, PurposeLogin, email)
		e.emitAudit(ctx, AuditEventNotify, PurposeLogin, email, user.ID, err)
		return fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	e.metricInc(MetricLoginChallengeIssued)
	e.emitAudit(ctx, AuditEventLogin, PurposeLogin, email, user.ID, nil)
	return nil
}

// ConfirmLogin verifies the login OTP and mints a session pair. The
// challenge survives a wrong guess and is consumed only on success.
func (e *Engine) ConfirmLogin(ctx context.Context, email, code string) (*UserRecord, SessionPair, error) {
	if !e.ready() {
		return nil, SessionPair{}, ErrEngineNotReady
	}

	if err := e.verifyChallenge(ctx, PurposeLogin, email, code); err != nil {
		e.metricInc(MetricLoginVerifyFailure)
		e.emitAudit(ctx, AuditEventLoginVerify, PurposeLogin, email, "", err)
		return nil, SessionPair{}, err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		// The account vanished between the two steps.
		e.metricInc(MetricLoginVerifyFailure)
		e.emitAudit(ctx, AuditEventLoginVerify, PurposeLogin, email, "", ErrInvalidCredentials)
		return nil, SessionPair{}, ErrInvalidCredentials
	}
	if err != nil {
		return nil, SessionPair{}, err
	}

	e.dropChallenge(ctx, PurposeLogin, email)

	pair, err := e.issueSessionPair(user.ID)
	if err != nil {
		return nil, SessionPair{}, err
	}

	e.metricInc(MetricLoginVerifySuccess)
	e.emitAudit(ctx, AuditEventLoginVerify, PurposeLogin, email, user.ID, nil)
	return user, pair, nil
}
