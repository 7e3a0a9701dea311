package password

import (
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewArgon2(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}
	return h
}

func TestHashVerifyRoundTrip(t *testing.T) {
	h := testHasher(t)

	encoded, err := h.Hash("correct-horse")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected PHC prefix: %q", encoded)
	}

	ok, err := h.Verify("correct-horse", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify: ok=%v err=%v", ok, err)
	}
	ok, err = h.Verify("wrong-horse", encoded)
	if err != nil || ok {
		t.Fatalf("wrong secret must not verify: ok=%v err=%v", ok, err)
	}
}

func TestHashShortNumericSecret(t *testing.T) {
	// OTP codes go through the same digest path as passwords.
	h := testHasher(t)

	encoded, err := h.Hash("042719")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	ok, err := h.Verify("042719", encoded)
	if err != nil || !ok {
		t.Fatalf("Verify: ok=%v err=%v", ok, err)
	}
	ok, _ = h.Verify("042718", encoded)
	if ok {
		t.Fatal("near-miss code must not verify")
	}
}

func TestHashSaltsAreUnique(t *testing.T) {
	h := testHasher(t)

	a, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	b, err := h.Hash("secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if a == b {
		t.Fatal("two digests of the same secret must differ")
	}
}

func TestVerifyRejectsMalformedPHC(t *testing.T) {
	h := testHasher(t)

	for _, bad := range []string{
		"",
		"plain-text",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA",
		"$argon2id$v=19$m=8192,t=1,p=1$!!$aGFzaA",
	} {
		if _, err := h.Verify("secret", bad); err == nil {
			t.Fatalf("expected parse error for %q", bad)
		}
	}
}

func TestNeedsUpgrade(t *testing.T) {
	weak := testHasher(t)
	encoded, err := weak.Hash("secret")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	strong, err := NewArgon2(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("NewArgon2 failed: %v", err)
	}

	up, err := strong.NeedsUpgrade(encoded)
	if err != nil || !up {
		t.Fatalf("expected upgrade needed: up=%v err=%v", up, err)
	}
	up, err = weak.NeedsUpgrade(encoded)
	if err != nil || up {
		t.Fatalf("same parameters must not need upgrade: up=%v err=%v", up, err)
	}
}

func TestNewArgon2RejectsWeakConfig(t *testing.T) {
	cases := []Config{
		{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16},
		{Memory: 8 * 1024, Time: 0, Parallelism: 1, SaltLength: 16, KeyLength: 16},
		{Memory: 8 * 1024, Time: 1, Parallelism: 0, SaltLength: 16, KeyLength: 16},
		{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16},
		{Memory: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 8},
	}
	for i, cfg := range cases {
		if _, err := NewArgon2(cfg); err == nil {
			t.Fatalf("case %d: expected config rejection", i)
		}
	}
}
