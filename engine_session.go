package otpgate

import (
	"context"
	"fmt"
)

// issueSessionPair mints the access/refresh pair for a terminal flow step.
func (e *Engine) issueSessionPair(userID string) (SessionPair, error) {
	access, err := e.tokens.SignAccess(userID)
	if err != nil {
		return SessionPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := e.tokens.SignRefresh(userID)
	if err != nil {
		return SessionPair{}, fmt.Errorf("sign refresh token: %w", err)
	}

	e.metricInc(MetricSessionIssued)
	return SessionPair{AccessToken: access, RefreshToken: refresh}, nil
}

// RefreshAccess exchanges a valid refresh token for a fresh access token.
// The only identity trusted here is the verified token's subject; nothing
// else about the request participates.
func (e *Engine) RefreshAccess(ctx context.Context, refreshToken string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}

	claims, err := e.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, AuditEventRefresh, "", "", "", ErrInvalidRefreshToken)
		return "", fmt.Errorf("%w: %v", ErrInvalidRefreshToken, err)
	}

	access, err := e.tokens.SignAccess(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, AuditEventRefresh, "", "", claims.Subject, nil)
	return access, nil
}

// VerifyAccessToken validates an access token and returns the user id it
// identifies. Surfaces use this to guard authenticated endpoints.
func (e *Engine) VerifyAccessToken(accessToken string) (string, error) {
	if !e.ready() {
		return "", ErrEngineNotReady
	}
	claims, err := e.tokens.VerifyAccess(accessToken)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAccessToken, err)
	}
	return claims.Subject, nil
}
