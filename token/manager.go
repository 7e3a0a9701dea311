package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the signature algorithm for all otpgate tokens.
type SigningMethod string

const (
	// MethodHS256 signs with the service-wide shared secret (default).
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an Ed25519 keypair.
	MethodEd25519 SigningMethod = "ed25519"
)

// Stage discriminates the two password-reset progress tiers. A stage-1
// token can never be replayed where a stage-2 token is required.
type Stage string

const (
	// StageContacted asserts "this email has been sent a reset OTP".
	StageContacted Stage = "reset-contacted"
	// StageOTPVerified asserts "the reset OTP for this email was verified".
	StageOTPVerified Stage = "reset-verified"
)

// Use discriminates session token roles so an access token can never be
// presented where a refresh token is required.
type Use string

const (
	UseAccess  Use = "access"
	UseRefresh Use = "refresh"
)

var (
	// ErrMalformed covers signature failures and undecodable tokens.
	ErrMalformed = errors.New("malformed token")
	// ErrExpired covers tokens past their expiry (or not yet valid).
	ErrExpired = errors.New("expired token")
	// ErrAudienceMismatch is the explicit post-signature issuer/audience
	// equality failure.
	ErrAudienceMismatch = errors.New("token issuer or audience mismatch")
	// ErrWrongStage is returned when a progress token of the wrong tier is
	// presented.
	ErrWrongStage = errors.New("token stage mismatch")
	// ErrWrongUse is returned when a session token of the wrong role is
	// presented.
	ErrWrongUse = errors.New("token use mismatch")
)

// Config holds the immutable signing parameters shared by every token the
// service mints.
type Config struct {
	SigningMethod SigningMethod
	Secret        []byte // hs256
	PrivateKey    []byte // ed25519
	PublicKey     []byte // ed25519
	Issuer        string
	Audience      string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Leeway        time.Duration
}

// Manager signs and verifies otpgate tokens. Safe for concurrent use.
type Manager struct {
	config Config
}

// ProgressClaims assert "identity Email has completed stage Stage of the
// password-reset flow before the embedded expiry".
type ProgressClaims struct {
	Email string `json:"email"`
	Stage Stage  `json:"stage"`
	jwt.RegisteredClaims
}

// SessionClaims identify an authenticated user; Subject carries the user id.
type SessionClaims struct {
	Use Use `json:"use"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a ready Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("refresh TTL must exceed access TTL")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("issuer and audience are required")
	}

	switch cfg.SigningMethod {
	case MethodHS256, "":
		if len(cfg.Secret) < 32 {
			return nil, errors.New("hs256 requires a secret of at least 32 bytes")
		}
		cfg.SigningMethod = MethodHS256
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("unsupported signing method")
	}

	return &Manager{config: cfg}, nil
}

// SignProgress mints a progress token for email at the given stage.
func (m *Manager) SignProgress(email string, stage Stage, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", errors.New("invalid progress ttl")
	}
	now := time.Now()
	claims := ProgressClaims{
		Email: email,
		Stage: stage,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return m.sign(claims)
}

// VerifyProgress parses and validates a progress token, requires the given
// stage, and performs the explicit issuer/audience equality check against
// the expected values.
func (m *Manager) VerifyProgress(tokenStr string, stage Stage, expectedIssuer, expectedAudience string) (*ProgressClaims, error) {
	claims := &ProgressClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if err := checkIssuerAudience(claims.Issuer, claims.Audience, expectedIssuer, expectedAudience); err != nil {
		return nil, err
	}
	if claims.Stage != stage {
		return nil, ErrWrongStage
	}
	if claims.Email == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

// SignAccess mints a short-lived access token for userID.
func (m *Manager) SignAccess(userID string) (string, error) {
	return m.signSession(userID, UseAccess, m.config.AccessTTL)
}

// SignRefresh mints a long-lived refresh token for userID.
func (m *Manager) SignRefresh(userID string) (string, error) {
	return m.signSession(userID, UseRefresh, m.config.RefreshTTL)
}

// VerifyAccess validates an access token and returns its claims.
func (m *Manager) VerifyAccess(tokenStr string) (*SessionClaims, error) {
	return m.verifySession(tokenStr, UseAccess)
}

// VerifyRefresh validates a refresh token and returns its claims. The
// subject embedded here is the only user identity a refresh operation may
// trust.
func (m *Manager) VerifyRefresh(tokenStr string) (*SessionClaims, error) {
	return m.verifySession(tokenStr, UseRefresh)
}

func (m *Manager) signSession(userID string, use Use, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("empty subject")
	}
	now := time.Now()
	claims := SessionClaims{
		Use: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    m.config.Issuer,
			Audience:  jwt.ClaimStrings{m.config.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return m.sign(claims)
}

func (m *Manager) verifySession(tokenStr string, use Use) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := m.parse(tokenStr, claims); err != nil {
		return nil, err
	}
	if err := checkIssuerAudience(claims.Issuer, claims.Audience, m.config.Issuer, m.config.Audience); err != nil {
		return nil, err
	}
	if claims.Use != use {
		return nil, ErrWrongUse
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}
	return claims, nil
}

func (m *Manager) sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(m.getMethod(), claims)
	key, err := m.getSignKey()
	if err != nil {
		return "", err
	}
	return t.SignedString(key)
}

func (m *Manager) parse(tokenStr string, claims jwt.Claims) error {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.getMethod().Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	t, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.getMethod().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.getVerifyKey()
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
			return fmt.Errorf("%w: %v", ErrExpired, err)
		default:
			return fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}
	if !t.Valid {
		return ErrMalformed
	}
	return nil
}

// checkIssuerAudience is deliberately separate from signature validation: a
// token signed with the shared secret but scoped to another deployment's
// issuer/audience must fail here.
func checkIssuerAudience(issuer string, audience jwt.ClaimStrings, expectedIssuer, expectedAudience string) error {
	if issuer != expectedIssuer {
		return ErrAudienceMismatch
	}
	for _, aud := range audience {
		if aud == expectedAudience {
			return nil
		}
	}
	return ErrAudienceMismatch
}

func (m *Manager) getMethod() jwt.SigningMethod {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (m *Manager) getSignKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(m.config.PrivateKey)
	default:
		return m.config.Secret, nil
	}
}

func (m *Manager) getVerifyKey() (interface{}, error) {
	switch m.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(m.config.PublicKey)
	default:
		return m.config.Secret, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
