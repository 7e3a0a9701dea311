package otpgate

import "errors"

var (
	// ErrEngineNotReady is returned when an Engine method runs before all
	// collaborators are wired.
	ErrEngineNotReady = errors.New("engine not initialized")

	// ErrChallengePending rejects issuing a new OTP while an unexpired one
	// exists for the same (purpose, identity) pair.
	ErrChallengePending = errors.New("otp already pending")
	// ErrChallengeExpired covers a verify attempt with no stored challenge.
	ErrChallengeExpired = errors.New("otp expired or not found")
	// ErrChallengeMismatch covers a candidate code that fails digest
	// verification.
	ErrChallengeMismatch = errors.New("invalid otp")
	// ErrInvalidPurpose rejects purpose tags outside the enumerated set.
	ErrInvalidPurpose = errors.New("invalid otp purpose")

	// ErrUsernameTaken and ErrEmailTaken are the distinct signup conflicts;
	// the username check runs first.
	ErrUsernameTaken = errors.New("username already registered")
	ErrEmailTaken    = errors.New("email already registered")

	// ErrInvalidCredentials is deliberately uniform across "no such user"
	// and "wrong password".
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountUnverified rejects login before the signup OTP was
	// confirmed.
	ErrAccountUnverified = errors.New("account not verified")
	// ErrWrongAccountType rejects local-credential operations on federated
	// accounts.
	ErrWrongAccountType = errors.New("wrong account type for this login method")
	// ErrUserNotFound is used only where the flow already implies
	// existence, e.g. password-reset stage 1.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidProgressToken covers malformed, badly signed, or expired
	// progress tokens.
	ErrInvalidProgressToken = errors.New("invalid progress token")
	// ErrForeignToken is the distinct issuer/audience equality failure: the
	// signature may be valid, the scope is not.
	ErrForeignToken = errors.New("token not issued for this service")
	// ErrInvalidRefreshToken covers every refresh verification failure.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	// ErrInvalidAccessToken covers every access-token verification failure.
	ErrInvalidAccessToken = errors.New("invalid access token")

	// ErrStoreUnavailable wraps challenge-store and user-store transport
	// failures; callers map it to a generic server error.
	ErrStoreUnavailable = errors.New("backing store unavailable")
	// ErrNotifyFailed wraps awaited notification failures (login and
	// password-reset issuance; signup swallows them).
	ErrNotifyFailed = errors.New("notification send failed")
)
