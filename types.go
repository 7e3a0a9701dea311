package otpgate

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/otpgate/otpgate/internal/audit"
	internalmetrics "github.com/otpgate/otpgate/internal/metrics"
)

// Purpose namespaces OTP challenges so flows cannot interfere with each
// other: a login code for an address never collides with a signup code for
// the same address.
type Purpose string

const (
	// PurposeSignup is an OTP challenge gating first-time email verification.
	PurposeSignup Purpose = "signup"
	// PurposeLogin is an OTP challenge gating the second login step.
	PurposeLogin Purpose = "login"
	// PurposePasswordReset is an OTP challenge gating password-reset stage 2.
	PurposePasswordReset Purpose = "password-reset"
)

// ParsePurpose maps a caller-supplied purpose tag onto the enumerated set.
func ParsePurpose(tag string) (Purpose, error) {
	switch Purpose(tag) {
	case PurposeSignup, PurposeLogin, PurposePasswordReset:
		return Purpose(tag), nil
	default:
		return "", ErrInvalidPurpose
	}
}

// AccountType discriminates locally registered identities from
// federated-provider ones.
type AccountType string

const (
	// AccountLocal identities carry a password digest and pass the OTP flows.
	AccountLocal AccountType = "local"
	// AccountGoogle identities are created pre-verified with an empty digest.
	AccountGoogle AccountType = "google"
)

// UserRecord is the full account record exchanged with the [UserStore].
// PasswordHash is empty for federated identities.
type UserRecord struct {
	ID           string
	Username     string
	Email        string
	Name         string
	PasswordHash string
	Verified     bool
	Type         AccountType
	CreatedAt    time.Time
}

// Profile is the non-secret projection of a [UserRecord] returned to
// callers after a terminal flow step.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
}

// Profile returns the non-secret fields of u.
func (u *UserRecord) Profile() Profile {
	return Profile{Username: u.Username, Email: u.Email, Name: u.Name}
}

// CreateUserInput is the input for [UserStore.Create].
type CreateUserInput struct {
	Username     string
	Email        string
	Name         string
	PasswordHash string
	Verified     bool
	Type         AccountType
}

// UserStore is the persistent identity collaborator. Implementations must
// return [ErrUserNotFound] for absent records and enforce username/email
// uniqueness.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetByUsername(ctx context.Context, username string) (*UserRecord, error)
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	Create(ctx context.Context, input CreateUserInput) (*UserRecord, error)
	MarkVerified(ctx context.Context, email string) error
	UpdatePasswordHash(ctx context.Context, email, newHash string) error
}

// Notifier delivers a plaintext OTP code to an identity. The challenge
// store only ever holds the digest; the plaintext exists in the notifier
// call and nowhere else.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

// SessionPair is the access/refresh credential pair minted at a terminal
// flow step. Both tokens are independently verifiable and independently
// expiring.
type SessionPair struct {
	AccessToken  string
	RefreshToken string
}

// FederatedProfile is the identity asserted by an external provider after a
// successful handshake.
type FederatedProfile struct {
	Email    string
	Name     string
	Username string
	Provider AccountType
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit
// dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket in the
// in-process metrics system.
type MetricID = internalmetrics.MetricID
