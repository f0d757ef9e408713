package core

import (
	"errors"
	"fmt"

	"github.com/pttwnz/elie/internal/auth"
	"github.com/pttwnz/elie/internal/store"
)

// AccountService handles registration and login against the credential
// store, bootstrapping the user's prompt library and session record.
type AccountService struct {
	users    *store.CredentialStore
	prompts  *store.PromptStore
	sessions *store.SessionStore
}

func NewAccountService(users *store.CredentialStore, prompts *store.PromptStore, sessions *store.SessionStore) *AccountService {
	return &AccountService{users: users, prompts: prompts, sessions: sessions}
}

// Register creates the credential record and an empty prompt-library entry.
// A taken username fails with ErrUsernameTaken and changes nothing.
func (s *AccountService) Register(username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrInvalidCredentials)
	}

	if err := s.users.Create(username, auth.HashPassword(password)); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			return fmt.Errorf("%w: %s", ErrUsernameTaken, username)
		}
		return fmt.Errorf("create user %s: %w", username, err)
	}

	if err := s.prompts.EnsureUser(username); err != nil {
		return fmt.Errorf("bootstrap prompt library for %s: %w", username, err)
	}
	return nil
}

// Login verifies the credentials and loads the user's session record,
// creating it with empty containers on first login. Returns the session and
// a bearer token for the authenticated state.
func (s *AccountService) Login(username, password string) (*store.Session, string, error) {
	hash, found, err := s.users.Hash(username)
	if err != nil {
		return nil, "", fmt.Errorf("look up user %s: %w", username, err)
	}
	if !found || !auth.CheckPasswordHash(password, hash) {
		return nil, "", ErrInvalidCredentials
	}

	// Users that predate the registration bootstrap still get a library entry.
	if err := s.prompts.EnsureUser(username); err != nil {
		return nil, "", fmt.Errorf("bootstrap prompt library for %s: %w", username, err)
	}

	session, err := s.sessions.Load(username)
	if err != nil {
		return nil, "", fmt.Errorf("load session for %s: %w", username, err)
	}
	// Materialize the record so it exists from the first login on.
	if err := s.sessions.Save(username, session); err != nil {
		return nil, "", fmt.Errorf("persist session for %s: %w", username, err)
	}

	token, err := auth.GenerateJWT(username)
	if err != nil {
		return nil, "", fmt.Errorf("generate token for %s: %w", username, err)
	}
	return session, token, nil
}
