package internal

import "testing"

func TestNewOTPWidth(t *testing.T) {
	for _, digits := range []int{6, 8, 10} {
		otp, err := NewOTP(digits)
		if err != nil {
			t.Fatalf("NewOTP(%d) failed: %v", digits, err)
		}
		if len(otp) != digits {
			t.Fatalf("NewOTP(%d) = %q, want %d digits", digits, otp, digits)
		}
		if !IsNumericString(otp) {
			t.Fatalf("NewOTP(%d) = %q contains non-digits", digits, otp)
		}
	}
}

func TestNewOTPRejectsBadWidth(t *testing.T) {
	for _, digits := range []int{0, 5, 11, -1} {
		if _, err := NewOTP(digits); err == nil {
			t.Fatalf("NewOTP(%d) accepted invalid width", digits)
		}
	}
}

func TestNewOTPVaries(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		otp, err := NewOTP(6)
		if err != nil {
			t.Fatalf("NewOTP failed: %v", err)
		}
		seen[otp] = true
	}
	if len(seen) < 2 {
		t.Fatal("20 draws produced a single code")
	}
}

func TestIsNumericString(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"", false},
		{"12345a", false},
		{"12 456", false},
		{"12345６", false}, // full-width digit
	}
	for _, tc := range cases {
		if got := IsNumericString(tc.in); got != tc.want {
			t.Errorf("IsNumericString(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewStateToken(t *testing.T) {
	a, err := NewStateToken()
	if err != nil {
		t.Fatalf("NewStateToken failed: %v", err)
	}
	b, err := NewStateToken()
	if err != nil {
		t.Fatalf("NewStateToken failed: %v", err)
	}
	if a == b {
		t.Fatal("two state tokens collided")
	}
	if len(a) != 32 { // 24 bytes, raw base64url
		t.Fatalf("unexpected token length %d: %q", len(a), a)
	}
}
