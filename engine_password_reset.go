package otpgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/otpgate/otpgate/token"
)

// StartPasswordReset runs reset stage 1: it confirms the account exists and
// is local, dispatches a reset OTP, and returns the stage-1 progress token
// binding the rest of the flow to this email. Unlike login, a missing
// account is reported as [ErrUserNotFound]: the caller already proved they
// know the address by asking to reset it.
func (e *Engine) StartPasswordReset(ctx context.Context, email string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	user, err := e.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, AuditEventResetStart, PurposePasswordReset, email, "", ErrUserNotFound)
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}
	if user.Type != AccountLocal {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, AuditEventResetStart, PurposePasswordReset, email, user.ID, ErrWrongAccountType)
		return "", ErrWrongAccountType
	}

	code, err := e.issueChallenge(ctx, PurposePasswordReset, email, true)
	if err != nil {
		e.emitAudit(ctx, AuditEventResetStart, PurposePasswordReset, email, user.ID, err)
		return "", err
	}

	if err := e.notifier.SendOTP(ctx, email, code); err != nil {
		e.metricInc(MetricNotifyFailure)
		e.dropChallenge(ctx, PurposePasswordReset, email)
		e.emitAudit(ctx, AuditEventNotify, PurposePasswordReset, email, user.ID, err)
		return "", fmt.Errorf("%w: %v", ErrNotifyFailed, err)
	}

	stage1, err := e.tokens.SignProgress(email, token.StageContacted, e.config.Reset.Stage1TTL)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricResetStage1)
	e.emitAudit(ctx, AuditEventResetStart, PurposePasswordReset, email, user.ID, nil)
	return stage1, nil
}

// ConfirmPasswordResetOTP runs reset stage 2: it unwraps the stage-1 token,
// verifies the OTP against the email the token asserts (never one the
// caller supplies), and exchanges it for the stage-2 token.
func (e *Engine) ConfirmPasswordResetOTP(ctx context.Context, stage1Token, code string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	claims, err := e.tokens.VerifyProgress(stage1Token, token.StageContacted, e.config.Token.Issuer, e.config.Token.Audience)
	if err != nil {
		mapped := mapProgressTokenErr(err)
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, AuditEventResetVerify, PurposePasswordReset, "", "", mapped)
		return "", mapped
	}

	if err := e.verifyChallenge(ctx, PurposePasswordReset, claims.Email, code); err != nil {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, AuditEventResetVerify, PurposePasswordReset, claims.Email, "", err)
		return "", err
	}

	e.dropChallenge(ctx, PurposePasswordReset, claims.Email)

	stage2, err := e.tokens.SignProgress(claims.Email, token.StageOTPVerified, e.config.Reset.Stage2TTL)
	if err != nil {
		return "", err
	}

	e.metricInc(MetricResetStage2)
	e.emitAudit(ctx, AuditEventResetVerify, PurposePasswordReset, claims.Email, "", nil)
	return stage2, nil
}

// CompletePasswordReset runs reset stage 3: it unwraps the stage-2 token
// and replaces the password digest of the account it names.
func (e *Engine) CompletePasswordReset(ctx context.Context, stage2Token, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	claims, err := e.tokens.VerifyProgress(stage2Token, token.StageOTPVerified, e.config.Token.Issuer, e.config.Token.Audience)
	if err != nil {
		mapped := mapProgressTokenErr(err)
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, AuditEventResetComplete, PurposePasswordReset, "", "", mapped)
		return mapped
	}

	user, err := e.users.GetByEmail(ctx, claims.Email)
	if errors.Is(err, ErrUserNotFound) {
		e.metricInc(MetricResetFailure)
		e.emitAudit(ctx, AuditEventResetComplete, PurposePasswordReset, claims.Email, "", ErrUserNotFound)
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}

	digest, err := e.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("password digest: %w", err)
	}
	if err := e.users.UpdatePasswordHash(ctx, claims.Email, digest); err != nil {
		return err
	}

	e.metricInc(MetricResetComplete)
	e.emitAudit(ctx, AuditEventResetComplete, PurposePasswordReset, claims.Email, user.ID, nil)
	return nil
}

// mapProgressTokenErr folds the token package's verification failures into
// the engine's sentinels. Issuer/audience mismatch keeps its own identity so
// the surface can distinguish "forged or stale" from "minted for some other
// deployment".
func mapProgressTokenErr(err error) error {
	if errors.Is(err, token.ErrAudienceMismatch) {
		return ErrForeignToken
	}
	return fmt.Errorf("%w: %v", ErrInvalidProgressToken, err)
}
