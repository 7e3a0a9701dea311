package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testManagerConfig() Config {
	return Config{
		SigningMethod: MethodHS256,
		Secret:        []byte(strings.Repeat("s", 32)),
		Issuer:        "otpgate-test",
		Audience:      "otpgate-test-clients",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(testManagerConfig())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManagerValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"short secret", func(c *Config) { c.Secret = []byte("short") }},
		{"missing issuer", func(c *Config) { c.Issuer = " " }},
		{"missing audience", func(c *Config) { c.Audience = "" }},
		{"refresh not longer than access", func(c *Config) { c.RefreshTTL = c.AccessTTL }},
		{"zero access ttl", func(c *Config) { c.AccessTTL = 0 }},
		{"excessive leeway", func(c *Config) { c.Leeway = 10 * time.Minute }},
		{"unknown method", func(c *Config) { c.SigningMethod = "rs256" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testManagerConfig()
			tc.mutate(&cfg)
			if _, err := NewManager(cfg); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestProgressRoundTrip(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.SignProgress("alice@example.com", StageContacted, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignProgress failed: %v", err)
	}

	claims, err := m.VerifyProgress(signed, StageContacted, "otpgate-test", "otpgate-test-clients")
	if err != nil {
		t.Fatalf("VerifyProgress failed: %v", err)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
}

func TestProgressStageMismatch(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.SignProgress("alice@example.com", StageContacted, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignProgress failed: %v", err)
	}

	if _, err := m.VerifyProgress(signed, StageOTPVerified, "otpgate-test", "otpgate-test-clients"); !errors.Is(err, ErrWrongStage) {
		t.Fatalf("expected ErrWrongStage, got %v", err)
	}
}

func TestProgressIssuerAudienceEquality(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.SignProgress("alice@example.com", StageContacted, 5*time.Minute)
	if err != nil {
		t.Fatalf("SignProgress failed: %v", err)
	}

	// Valid signature, wrong scope: the post-signature equality check must
	// fire on its own.
	if _, err := m.VerifyProgress(signed, StageContacted, "other", "otpgate-test-clients"); !errors.Is(err, ErrAudienceMismatch) {
		t.Fatalf("expected ErrAudienceMismatch on issuer, got %v", err)
	}
	if _, err := m.VerifyProgress(signed, StageContacted, "otpgate-test", "other"); !errors.Is(err, ErrAudienceMismatch) {
		t.Fatalf("expected ErrAudienceMismatch on audience, got %v", err)
	}
}

func TestProgressExpiry(t *testing.T) {
	m := newTestManager(t)

	signed, err := m.SignProgress("alice@example.com", StageContacted, time.Millisecond)
	if err != nil {
		t.Fatalf("SignProgress failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if _, err := m.VerifyProgress(signed, StageContacted, "otpgate-test", "otpgate-test-clients"); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestSessionUseDiscrimination(t *testing.T) {
	m := newTestManager(t)

	access, err := m.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}
	refresh, err := m.SignRefresh("user-1")
	if err != nil {
		t.Fatalf("SignRefresh failed: %v", err)
	}

	if _, err := m.VerifyAccess(access); err != nil {
		t.Fatalf("VerifyAccess failed: %v", err)
	}
	if _, err := m.VerifyRefresh(refresh); err != nil {
		t.Fatalf("VerifyRefresh failed: %v", err)
	}

	if _, err := m.VerifyAccess(refresh); !errors.Is(err, ErrWrongUse) {
		t.Fatalf("expected ErrWrongUse, got %v", err)
	}
	if _, err := m.VerifyRefresh(access); !errors.Is(err, ErrWrongUse) {
		t.Fatalf("expected ErrWrongUse, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	m := newTestManager(t)

	access, err := m.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}

	tampered := access[:len(access)-2] + "xx"
	if _, err := m.VerifyAccess(tampered); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
	if _, err := m.VerifyAccess("garbage"); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestCrossSecretRejected(t *testing.T) {
	m := newTestManager(t)

	otherCfg := testManagerConfig()
	otherCfg.Secret = []byte(strings.Repeat("x", 32))
	other, err := NewManager(otherCfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	signed, err := other.SignAccess("user-1")
	if err != nil {
		t.Fatalf("SignAccess failed: %v", err)
	}
	if _, err := m.VerifyAccess(signed); !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed for wrong secret, got %v", err)
	}
}
