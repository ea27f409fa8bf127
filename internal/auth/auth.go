// Package auth manages credential records and the single active session.
// Credentials live under one storage key, keyed by email, append-only; the
// session lives under its own key and never holds the password hash.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/urbanhaven/storefront/internal/platform/errors"
	"github.com/urbanhaven/storefront/internal/storage"
)

// ErrDuplicateEmail reports a signup against an already-registered email.
var ErrDuplicateEmail = apperrors.EK(apperrors.KindConflict, "auth.error.email_exists", "an account with this email already exists")

// ErrInvalidCredentials reports a login with no matching credential.
var ErrInvalidCredentials = apperrors.EK(apperrors.KindUnauthorized, "auth.error.invalid_credentials", "invalid email or password")

// ErrNotAuthenticated reports the absence of an active session.
var ErrNotAuthenticated = apperrors.E(apperrors.KindUnauthorized, "no active session")

// Credential is one stored signup record. Passwords are stored as bcrypt
// hashes, never in the clear.
type Credential struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

// Session is the active user identity: name and email only.
type Session struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Service provides signup, login, and logout over a key-value store.
type Service struct {
	store storage.KV

	mu sync.Mutex
}

// NewService returns an auth service backed by the provided store.
func NewService(store storage.KV) *Service {
	return &Service{store: store}
}

// Signup appends a credential record and activates a session for it.
// An existing record with the same email (case-sensitive exact match)
// fails with ErrDuplicateEmail and leaves both collections untouched.
func (s *Service) Signup(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return Session{}, apperrors.EK(apperrors.KindInvalidInput, "auth.error.fields_required", "name, email, and password are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	credentials := s.loadCredentials(ctx)
	for _, record := range credentials {
		if record.Email == email {
			return Session{}, ErrDuplicateEmail
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}

	credentials = append(credentials, Credential{Name: name, Email: email, PasswordHash: string(hash)})
	if err := s.saveCredentials(ctx, credentials); err != nil {
		return Session{}, err
	}

	session := Session{Name: name, Email: email}
	if err := s.saveSession(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// Login activates a session for the credential matching email and password.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range s.loadCredentials(ctx) {
		if record.Email != email {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(password)) != nil {
			break
		}
		session := Session{Name: record.Name, Email: record.Email}
		if err := s.saveSession(ctx, session); err != nil {
			return Session{}, err
		}
		return session, nil
	}
	return Session{}, ErrInvalidCredentials
}

// Logout clears the active session. Credential records are untouched.
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, storage.KeySession); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// ActiveSession returns the persisted session, or ErrNotAuthenticated.
// A malformed stored session degrades to anonymous.
func (s *Service) ActiveSession(ctx context.Context) (Session, error) {
	payload, err := s.store.Load(ctx, storage.KeySession)
	if err != nil {
		return Session{}, ErrNotAuthenticated
	}
	var session Session
	if err := json.Unmarshal(payload, &session); err != nil || session.Email == "" {
		return Session{}, ErrNotAuthenticated
	}
	return session, nil
}

// loadCredentials reads the stored collection; missing or malformed data
// degrades to an empty collection. Callers hold s.mu.
func (s *Service) loadCredentials(ctx context.Context) []Credential {
	payload, err := s.store.Load(ctx, storage.KeyUsers)
	if err != nil {
		return nil
	}
	var credentials []Credential
	if err := json.Unmarshal(payload, &credentials); err != nil {
		return nil
	}
	return credentials
}

func (s *Service) saveCredentials(ctx context.Context, credentials []Credential) error {
	payload, err := json.Marshal(credentials)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := s.store.Save(ctx, storage.KeyUsers, payload); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

func (s *Service) saveSession(ctx context.Context, session Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.store.Save(ctx, storage.KeySession, payload); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}
