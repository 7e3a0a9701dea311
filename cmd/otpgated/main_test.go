package main

import (
	"testing"
	"time"
)

func TestLoadConfigOverlaysEnvironment(t *testing.T) {
	t.Setenv("OTPGATE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("OTPGATE_JWT_ISSUER", "otpgated-test")
	t.Setenv("OTPGATE_JWT_AUDIENCE", "otpgated-test-clients")
	t.Setenv("OTPGATE_ARGON2_MEMORY", "32768")
	t.Setenv("OTPGATE_ARGON2_TIME", "2")
	t.Setenv("OTPGATE_ARGON2_PARALLELISM", "4")
	t.Setenv("OTPGATE_ARGON2_SALT", "24")
	t.Setenv("OTPGATE_ARGON2_KEYLEN", "48")
	t.Setenv("OTPGATE_OTP_TTL_SIGNUP", "90s")
	t.Setenv("OTPGATE_OTP_TTL_LOGIN", "2m")
	t.Setenv("OTPGATE_OTP_TTL_RESET", "10m")
	t.Setenv("OTPGATE_RESET_STAGE1_TTL", "3m")
	t.Setenv("OTPGATE_RESET_STAGE2_TTL", "20m")

	cfg := loadConfig()

	if string(cfg.Token.Secret) != "0123456789abcdef0123456789abcdef" {
		t.Fatalf("secret not sourced: %q", cfg.Token.Secret)
	}
	if cfg.Token.Issuer != "otpgated-test" || cfg.Token.Audience != "otpgated-test-clients" {
		t.Fatalf("issuer/audience not sourced: %q %q", cfg.Token.Issuer, cfg.Token.Audience)
	}

	if cfg.Digest.Memory != 32768 || cfg.Digest.Time != 2 || cfg.Digest.Parallelism != 4 {
		t.Fatalf("digest cost not sourced: %+v", cfg.Digest)
	}
	if cfg.Digest.SaltLength != 24 || cfg.Digest.KeyLength != 48 {
		t.Fatalf("digest lengths not sourced: %+v", cfg.Digest)
	}

	if cfg.OTP.SignupTTL != 90*time.Second || cfg.OTP.LoginTTL != 2*time.Minute || cfg.OTP.ResetTTL != 10*time.Minute {
		t.Fatalf("otp TTLs not sourced: %+v", cfg.OTP)
	}
	if cfg.Reset.Stage1TTL != 3*time.Minute || cfg.Reset.Stage2TTL != 20*time.Minute {
		t.Fatalf("reset TTLs not sourced: %+v", cfg.Reset)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("sourced config does not validate: %v", err)
	}
}

func TestLoadConfigKeepsDefaultsWhenUnset(t *testing.T) {
	for _, key := range []string{
		"OTPGATE_ARGON2_MEMORY", "OTPGATE_ARGON2_TIME", "OTPGATE_ARGON2_PARALLELISM",
		"OTPGATE_ARGON2_SALT", "OTPGATE_ARGON2_KEYLEN",
		"OTPGATE_OTP_TTL_SIGNUP", "OTPGATE_OTP_TTL_LOGIN", "OTPGATE_OTP_TTL_RESET",
		"OTPGATE_RESET_STAGE1_TTL", "OTPGATE_RESET_STAGE2_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg := loadConfig()

	if cfg.Digest.Memory != 64*1024 || cfg.Digest.Time != 3 || cfg.Digest.Parallelism != 2 {
		t.Fatalf("unexpected digest defaults: %+v", cfg.Digest)
	}
	if cfg.OTP.SignupTTL != 180*time.Second || cfg.OTP.ResetTTL != 300*time.Second {
		t.Fatalf("unexpected otp TTL defaults: %+v", cfg.OTP)
	}
	if cfg.Reset.Stage1TTL != 5*time.Minute || cfg.Reset.Stage2TTL != 15*time.Minute {
		t.Fatalf("unexpected reset TTL defaults: %+v", cfg.Reset)
	}
}

func TestEnvDurationRejectsGarbage(t *testing.T) {
	t.Setenv("OTPGATE_OTP_TTL_LOGIN", "soon")
	if got := envDuration("OTPGATE_OTP_TTL_LOGIN", time.Minute); got != time.Minute {
		t.Fatalf("garbage duration accepted: %v", got)
	}

	t.Setenv("OTPGATE_OTP_TTL_LOGIN", "-30s")
	if got := envDuration("OTPGATE_OTP_TTL_LOGIN", time.Minute); got != time.Minute {
		t.Fatalf("negative duration accepted: %v", got)
	}
}
