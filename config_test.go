package otpgate

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.OTP.Digits != 6 {
		t.Fatalf("expected 6 OTP digits, got %d", cfg.OTP.Digits)
	}
	if cfg.OTP.SignupTTL != 180*time.Second || cfg.OTP.LoginTTL != 180*time.Second {
		t.Fatal("signup/login OTP TTL must be 180s")
	}
	if cfg.OTP.ResetTTL != 300*time.Second {
		t.Fatal("reset OTP TTL must be 300s")
	}
	if cfg.Reset.Stage1TTL != 5*time.Minute || cfg.Reset.Stage2TTL != 15*time.Minute {
		t.Fatal("reset progress token TTLs must be 5m/15m")
	}
	if cfg.Token.AccessTTL != 15*time.Minute || cfg.Token.RefreshTTL != 7*24*time.Hour {
		t.Fatal("session TTLs must be 15m/7d")
	}
}

func TestConfigValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"too few digits", func(c *Config) { c.OTP.Digits = 4 }},
		{"too many digits", func(c *Config) { c.OTP.Digits = 12 }},
		{"empty key prefix", func(c *Config) { c.OTP.KeyPrefix = "" }},
		{"zero login ttl", func(c *Config) { c.OTP.LoginTTL = 0 }},
		{"zero stage1 ttl", func(c *Config) { c.Reset.Stage1TTL = 0 }},
		{"stage2 shorter than stage1", func(c *Config) {
			c.Reset.Stage1TTL = 10 * time.Minute
			c.Reset.Stage2TTL = 5 * time.Minute
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOTPConfigTTLPerPurpose(t *testing.T) {
	cfg := DefaultConfig().OTP
	if cfg.TTL(PurposeLogin) != cfg.LoginTTL {
		t.Fatal("login purpose must use login TTL")
	}
	if cfg.TTL(PurposePasswordReset) != cfg.ResetTTL {
		t.Fatal("reset purpose must use reset TTL")
	}
	if cfg.TTL(PurposeSignup) != cfg.SignupTTL {
		t.Fatal("signup purpose must use signup TTL")
	}
}

func TestCloneConfigIsolatesSecrets(t *testing.T) {
	cfg := testConfig()
	clone := cloneConfig(cfg)
	clone.Token.Secret[0] ^= 0xff
	if cfg.Token.Secret[0] == clone.Token.Secret[0] {
		t.Fatal("clone must not share secret backing array")
	}
}
