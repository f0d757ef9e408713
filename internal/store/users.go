package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrUserExists is returned by Create when the username is already taken.
var ErrUserExists = errors.New("user already exists")

// CredentialStore persists the username -> password hash mapping in a single
// users.json file. Writes are serialized so concurrent registrations cannot
// lose updates.
type CredentialStore struct {
	mu   sync.Mutex
	path string
}

func NewCredentialStore(dataDir string) (*CredentialStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &CredentialStore{path: filepath.Join(dataDir, "users.json")}, nil
}

func (s *CredentialStore) load() (map[string]string, error) {
	users := map[string]string{}
	if _, err := readJSONFile(s.path, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create stores the hash for a new username. The record is never mutated
// afterwards; a second Create for the same name fails with ErrUserExists and
// leaves the original hash in place.
func (s *CredentialStore) Create(username, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, taken := users[username]; taken {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	}
	users[username] = passwordHash
	return writeJSONFile(s.path, users)
}

// Hash returns the stored password hash for the username.
// found is false when the user was never registered.
func (s *CredentialStore) Hash(username string) (hash string, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return "", false, err
	}
	hash, found = users[username]
	return hash, found, nil
}
