package otpgate

import (
	"errors"
	"time"
)

// Config is the process-wide engine configuration, loaded once at boot and
// treated as immutable after [Builder.Build].
type Config struct {
	Token   TokenConfig
	Digest  DigestConfig
	OTP     OTPConfig
	Reset   ResetConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig carries the signing parameters shared by progress tokens and
// session credentials.
type TokenConfig struct {
	SigningMethod string // "hs256" (default), "ed25519" optional
	Secret        []byte
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

/*
====================================
DIGEST CONFIG
====================================
*/

// DigestConfig carries the argon2id cost parameters used for both password
// digests and OTP digests.
type DigestConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
OTP CONFIG
====================================
*/

// OTPConfig controls challenge generation and the per-purpose TTLs. The
// TTL doubles as the resend window: while a challenge lives, re-issuance
// for its (purpose, identity) pair is rejected.
type OTPConfig struct {
	Digits    int
	KeyPrefix string
	SignupTTL time.Duration
	LoginTTL  time.Duration
	ResetTTL  time.Duration
}

// TTL returns the configured lifetime for a purpose.
func (c OTPConfig) TTL(p Purpose) time.Duration {
	switch p {
	case PurposeLogin:
		return c.LoginTTL
	case PurposePasswordReset:
		return c.ResetTTL
	default:
		return c.SignupTTL
	}
}

/*
====================================
RESET CONFIG
====================================
*/

// ResetConfig carries the two progress-token lifetimes of the
// password-reset flow.
type ResetConfig struct {
	Stage1TTL time.Duration
	Stage2TTL time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls in-process metric collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the production-ready defaults; override fields
// before handing it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			SigningMethod: "hs256",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    7 * 24 * time.Hour,
		},
		Digest: DigestConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		OTP: OTPConfig{
			Digits:    6,
			KeyPrefix: "otp",
			SignupTTL: 180 * time.Second,
			LoginTTL:  180 * time.Second,
			ResetTTL:  300 * time.Second,
		},
		Reset: ResetConfig{
			Stage1TTL: 5 * time.Minute,
			Stage2TTL: 15 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks cross-field invariants that the subpackage constructors
// cannot see.
func (c Config) Validate() error {
	if c.OTP.Digits < 6 || c.OTP.Digits > 10 {
		return errors.New("otp digits must be between 6 and 10")
	}
	if c.OTP.KeyPrefix == "" {
		return errors.New("otp key prefix required")
	}
	if c.OTP.SignupTTL <= 0 || c.OTP.LoginTTL <= 0 || c.OTP.ResetTTL <= 0 {
		return errors.New("otp TTLs must be positive")
	}
	if c.Reset.Stage1TTL <= 0 || c.Reset.Stage2TTL <= 0 {
		return errors.New("reset token TTLs must be positive")
	}
	if c.Reset.Stage2TTL < c.Reset.Stage1TTL {
		return errors.New("stage-2 token TTL must not be shorter than stage-1")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.Secret = cloneBytes(cfg.Token.Secret)
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
