package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// PromptStore persists every user's prompt library (title -> body) in a
// single prompts.json file. Titles are unique per user, not globally.
type PromptStore struct {
	mu   sync.Mutex
	path string
}

func NewPromptStore(dataDir string) (*PromptStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &PromptStore{path: filepath.Join(dataDir, "prompts.json")}, nil
}

func (s *PromptStore) load() (map[string]map[string]string, error) {
	prompts := map[string]map[string]string{}
	if _, err := readJSONFile(s.path, &prompts); err != nil {
		return nil, err
	}
	return prompts, nil
}

// EnsureUser creates an empty library entry for the user if none exists.
// Called on registration and login so List never distinguishes "no user"
// from "no prompts".
func (s *PromptStore) EnsureUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := prompts[username]; ok {
		return nil
	}
	prompts[username] = map[string]string{}
	return writeJSONFile(s.path, prompts)
}

// Save upserts a prompt: an existing title for the same user is overwritten.
func (s *PromptStore) Save(username, title, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return err
	}
	if prompts[username] == nil {
		prompts[username] = map[string]string{}
	}
	prompts[username][title] = body
	return writeJSONFile(s.path, prompts)
}

// Delete removes a prompt. Idempotent: deleting a missing title is a no-op.
// Sessions that still select the title are left alone; assembly skips
// dangling selections.
func (s *PromptStore) Delete(username, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := prompts[username][title]; !ok {
		return nil
	}
	delete(prompts[username], title)
	return writeJSONFile(s.path, prompts)
}

// List returns a copy of the user's prompt library.
func (s *PromptStore) List(username string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prompts, err := s.load()
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for title, body := range prompts[username] {
		out[title] = body
	}
	return out, nil
}
