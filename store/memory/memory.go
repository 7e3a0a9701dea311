// Package memory provides an in-process UserStore for development and
// tests. Uniqueness and lookup behavior match the SQL store.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/otpgate/otpgate"
)

// Store is a mutex-guarded in-memory user store.
type Store struct {
	mu         sync.RWMutex
	byID       map[string]*otpgate.UserRecord
	byEmail    map[string]string // lowercased email -> id
	byUsername map[string]string // lowercased username -> id
}

// New returns an empty store.
func New() *Store {
	return &Store{
		byID:       map[string]*otpgate.UserRecord{},
		byEmail:    map[string]string{},
		byUsername: map[string]string{},
	}
}

func (s *Store) GetByEmail(_ context.Context, email string) (*otpgate.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, otpgate.ErrUserNotFound
	}
	return copyRecord(s.byID[id]), nil
}

func (s *Store) GetByUsername(_ context.Context, username string) (*otpgate.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, otpgate.ErrUserNotFound
	}
	return copyRecord(s.byID[id]), nil
}

func (s *Store) GetByID(_ context.Context, id string) (*otpgate.UserRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, otpgate.ErrUserNotFound
	}
	return copyRecord(user), nil
}

func (s *Store) Create(_ context.Context, input otpgate.CreateUserInput) (*otpgate.UserRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[strings.ToLower(input.Username)]; taken {
		return nil, otpgate.ErrUsernameTaken
	}
	if _, taken := s.byEmail[strings.ToLower(input.Email)]; taken {
		return nil, otpgate.ErrEmailTaken
	}

	user := &otpgate.UserRecord{
		ID:           uuid.NewString(),
		Username:     input.Username,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: input.PasswordHash,
		Verified:     input.Verified,
		Type:         input.Type,
		CreatedAt:    time.Now(),
	}

	s.byID[user.ID] = user
	s.byEmail[strings.ToLower(user.Email)] = user.ID
	s.byUsername[strings.ToLower(user.Username)] = user.ID

	return copyRecord(user), nil
}

func (s *Store) MarkVerified(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return otpgate.ErrUserNotFound
	}
	s.byID[id].Verified = true
	return nil
}

func (s *Store) UpdatePasswordHash(_ context.Context, email, newHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return otpgate.ErrUserNotFound
	}
	s.byID[id].PasswordHash = newHash
	return nil
}

func copyRecord(u *otpgate.UserRecord) *otpgate.UserRecord {
	out := *u
	return &out
}
