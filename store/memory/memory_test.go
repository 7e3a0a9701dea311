package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/otpgate/otpgate"
)

func seedUser(t *testing.T, s *Store) *otpgate.UserRecord {
	t.Helper()
	user, err := s.Create(context.Background(), otpgate.CreateUserInput{
		Username:     "Alice",
		Email:        "Alice@Example.com",
		Name:         "Alice Example",
		PasswordHash: "$argon2id$fake",
		Type:         otpgate.AccountLocal,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return user
}

func TestCreateAndLookups(t *testing.T) {
	s := New()
	created := seedUser(t, s)

	if created.ID == "" {
		t.Fatal("Create assigned no ID")
	}
	if created.Verified {
		t.Fatal("user created verified without asking")
	}

	// Email and username lookups are case-insensitive.
	byEmail, err := s.GetByEmail(context.Background(), "alice@example.COM")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("GetByEmail returned %q, want %q", byEmail.ID, created.ID)
	}

	byUsername, err := s.GetByUsername(context.Background(), "ALICE")
	if err != nil {
		t.Fatalf("GetByUsername failed: %v", err)
	}
	if byUsername.ID != created.ID {
		t.Fatalf("GetByUsername returned %q, want %q", byUsername.ID, created.ID)
	}

	byID, err := s.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if byID.Email != created.Email {
		t.Fatalf("GetByID returned %q, want %q", byID.Email, created.Email)
	}
}

func TestCreateConflicts(t *testing.T) {
	s := New()
	seedUser(t, s)

	_, err := s.Create(context.Background(), otpgate.CreateUserInput{
		Username: "alice",
		Email:    "other@example.com",
	})
	if !errors.Is(err, otpgate.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	_, err = s.Create(context.Background(), otpgate.CreateUserInput{
		Username: "bob",
		Email:    "ALICE@example.com",
	})
	if !errors.Is(err, otpgate.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMissingUser(t *testing.T) {
	s := New()

	if _, err := s.GetByEmail(context.Background(), "nobody@example.com"); !errors.Is(err, otpgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.GetByUsername(context.Background(), "nobody"); !errors.Is(err, otpgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.GetByID(context.Background(), "missing-id"); !errors.Is(err, otpgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := s.MarkVerified(context.Background(), "nobody@example.com"); !errors.Is(err, otpgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := s.UpdatePasswordHash(context.Background(), "nobody@example.com", "x"); !errors.Is(err, otpgate.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestMarkVerifiedAndPasswordUpdate(t *testing.T) {
	s := New()
	created := seedUser(t, s)

	if err := s.MarkVerified(context.Background(), "alice@example.com"); err != nil {
		t.Fatalf("MarkVerified failed: %v", err)
	}
	if err := s.UpdatePasswordHash(context.Background(), "alice@example.com", "$argon2id$new"); err != nil {
		t.Fatalf("UpdatePasswordHash failed: %v", err)
	}

	user, err := s.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if !user.Verified {
		t.Fatal("user still unverified")
	}
	if user.PasswordHash != "$argon2id$new" {
		t.Fatalf("hash not updated: %q", user.PasswordHash)
	}
}

func TestReturnedRecordsAreCopies(t *testing.T) {
	s := New()
	created := seedUser(t, s)

	created.Verified = true
	created.PasswordHash = "tampered"

	fresh, err := s.GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if fresh.Verified || fresh.PasswordHash == "tampered" {
		t.Fatal("mutating a returned record changed the store")
	}
}
