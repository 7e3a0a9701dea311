package otpgate

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// SignupRequest carries the caller-validated registration fields.
type SignupRequest struct {
	Username string
	Name     string
	Email    string
	Password string
}

// Signup registers a local account in the unverified state and dispatches a
// signup OTP. The username check runs before the email check, so a request
// colliding on both reports the username conflict.
//
// Notification is fire-and-forget: the account exists either way, and the
// resend path recovers a lost code.
func (e *Engine) Signup(ctx context.Context, req SignupRequest) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	if _, err := e.users.GetByUsername(ctx, req.Username); err == nil {
		e.metricInc(MetricSignupDuplicate)
		e.emitAudit(ctx, AuditEventSignup, PurposeSignup, req.Email, "", ErrUsernameTaken)
		return ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	if _, err := e.users.GetByEmail(ctx, req.Email); err == nil {
		e.metricInc(MetricSignupDuplicate)
		e.emitAudit(ctx, AuditEventSignup, PurposeSignup, req.Email, "", ErrEmailTaken)
		return ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	digest, err := e.hasher.Hash(req.Password)
	if err != nil {
		return fmt.Errorf("password digest: %w", err)
	}

	user, err := e.users.Create(ctx, CreateUserInput{
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: digest,
		Verified:     false,
		Type:         AccountLocal,
	})
	if err != nil {
		return err
	}

	// Unconditional store: a re-signup attempt that somehow reaches here
	// gets a fresh code rather than a pending rejection.
	code, err := e.issueChallenge(ctx, PurposeSignup, req.Email, false)
	if err != nil {
		return err
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := e.notifier.SendOTP(sendCtx, req.Email, code); err != nil {
			e.metricInc(MetricNotifyFailure)
			e.emitAudit(sendCtx, AuditEventNotify, PurposeSignup, req.Email, user.ID, err)
		}
	}()

	e.metricInc(MetricSignupSuccess)
	e.emitAudit(ctx, AuditEventSignup, PurposeSignup, req.Email, user.ID, nil)
	return nil
}

// ConfirmSignup verifies the signup OTP, marks the account verified, and
// mints a session pair. The challenge is consumed only after the verified
// flag is persisted.
func (e *Engine) ConfirmSignup(ctx context.Context, email, code string) (*UserRecord, SessionPair, error) {
	if !e.ready() {
		return nil, SessionPair{}, ErrEngineNotReady
	}

	if err := e.verifyChallenge(ctx, PurposeSignup, email, code); err != nil {
		e.metricInc(MetricSignupVerifyFailure)
		e.emitAudit(ctx, AuditEventSignupVerify, PurposeSignup, email, "", err)
		return nil, SessionPair{}, err
	}

	user, err := e.users.GetByEmail(ctx, email)
	if err != nil {
		e.metricInc(MetricSignupVerifyFailure)
		e.emitAudit(ctx, AuditEventSignupVerify, PurposeSignup, email, "", err)
		return nil, SessionPair{}, err
	}

	if err := e.users.MarkVerified(ctx, email); err != nil {
		return nil, SessionPair{}, err
	}
	user.Verified = true

	e.dropChallenge(ctx, PurposeSignup, email)

	pair, err := e.issueSessionPair(user.ID)
	if err != nil {
		return nil, SessionPair{}, err
	}

	e.metricInc(MetricSignupVerifySuccess)
	e.emitAudit(ctx, AuditEventSignupVerify, PurposeSignup, email, user.ID, nil)
	return user, pair, nil
}
