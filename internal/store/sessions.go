package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SessionStore persists one session record per user under
// <dataDir>/sessions/<username>_session.json.
type SessionStore struct {
	mu  sync.Mutex
	dir string
}

func NewSessionStore(dataDir string) (*SessionStore, error) {
	dir := filepath.Join(dataDir, "sessions")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create sessions dir: %w", err)
	}
	return &SessionStore{dir: dir}, nil
}

func (s *SessionStore) sessionPath(username string) string {
	return filepath.Join(s.dir, safeFilename(username)+"_session.json")
}

// Load reads the user's session record. A user who never had one gets a
// fresh record with all containers empty.
func (s *SessionStore) Load(username string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session := NewSession()
	if _, err := readJSONFile(s.sessionPath(username), session); err != nil {
		return nil, err
	}
	// Records written by older versions may lack some containers.
	if session.ChatHistory == nil {
		session.ChatHistory = []Message{}
	}
	if session.Files == nil {
		session.Files = []FileEntry{}
	}
	if session.SelectedPrompts == nil {
		session.SelectedPrompts = []string{}
	}
	return session, nil
}

// Save rewrites the user's session record.
func (s *SessionStore) Save(username string, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return writeJSONFile(s.sessionPath(username), session)
}
