package otpgate

import (
	"context"
	"errors"
	"strings"

	"github.com/otpgate/otpgate/internal"
)

// AuthenticateFederated resolves a provider-asserted identity to a local
// account, creating one on first contact, and mints a session pair.
// Provider-created accounts are born verified with no password digest: the
// provider already proved control of the mailbox.
func (e *Engine) AuthenticateFederated(ctx context.Context, profile FederatedProfile) (*UserRecord, SessionPair, error) {
	if !e.ready() {
		return nil, SessionPair{}, ErrEngineNotReady
	}
	if profile.Email == "" {
		e.metricInc(MetricFederatedFailure)
		return nil, SessionPair{}, ErrInvalidCredentials
	}

	user, err := e.users.GetByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Existing account, local or federated: the provider assertion is
		// an email-ownership proof either way.
	case errors.Is(err, ErrUserNotFound):
		user, err = e.createFederatedUser(ctx, profile)
		if err != nil {
			e.metricInc(MetricFederatedFailure)
			e.emitAudit(ctx, AuditEventFederated, "", profile.Email, "", err)
			return nil, SessionPair{}, err
		}
		e.metricInc(MetricFederatedUserCreated)
	default:
		return nil, SessionPair{}, err
	}

	pair, err := e.issueSessionPair(user.ID)
	if err != nil {
		return nil, SessionPair{}, err
	}

	e.metricInc(MetricFederatedLogin)
	e.emitAudit(ctx, AuditEventFederated, "", profile.Email, user.ID, nil)
	return user, pair, nil
}

func (e *Engine) createFederatedUser(ctx context.Context, profile FederatedProfile) (*UserRecord, error) {
	accountType := profile.Provider
	if accountType == "" {
		accountType = AccountGoogle
	}

	username := profile.Username
	if username == "" {
		username = strings.SplitN(profile.Email, "@", 2)[0]
	}

	input := CreateUserInput{
		Username: username,
		Email:    profile.Email,
		Name:     profile.Name,
		Verified: true,
		Type:     accountType,
	}

	user, err := e.users.Create(ctx, input)
	if errors.Is(err, ErrUsernameTaken) {
		// Derived username collided with an unrelated account; retry once
		// with a random suffix.
		suffix, randErr := internal.NewOTP(6)
		if randErr != nil {
			return nil, randErr
		}
		input.Username = username + suffix
		user, err = e.users.Create(ctx, input)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
