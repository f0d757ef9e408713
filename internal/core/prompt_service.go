package core

import (
	"fmt"

	"github.com/pttwnz/elie/internal/store"
)

// PromptService manages each user's prompt library and the per-session
// selection of prompt titles.
type PromptService struct {
	prompts  *store.PromptStore
	sessions *store.SessionStore
}

func NewPromptService(prompts *store.PromptStore, sessions *store.SessionStore) *PromptService {
	return &PromptService{prompts: prompts, sessions: sessions}
}

// Save upserts a prompt. Empty title or body is rejected.
func (s *PromptService) Save(username, title, body string) error {
	if title == "" || body == "" {
		return ErrEmptyPrompt
	}
	return s.prompts.Save(username, title, body)
}

// Rename replaces a prompt under a new title, keeping the edit flow's
// delete-then-add semantics. The old title is NOT removed from any session's
// selection; a stale selection is skipped at assembly time.
func (s *PromptService) Rename(username, oldTitle, newTitle, body string) error {
	if err := s.Save(username, newTitle, body); err != nil {
		return err
	}
	if oldTitle == newTitle {
		return nil
	}
	return s.prompts.Delete(username, oldTitle)
}

// Delete removes a prompt. Idempotent; selections referencing it go stale
// and are tolerated.
func (s *PromptService) Delete(username, title string) error {
	return s.prompts.Delete(username, title)
}

// List returns the user's prompt library.
func (s *PromptService) List(username string) (map[string]string, error) {
	return s.prompts.List(username)
}

// Select adds a title to the session's selected prompts and persists the
// session. Selecting an already-selected title is a no-op.
func (s *PromptService) Select(username, title string) error {
	session, err := s.sessions.Load(username)
	if err != nil {
		return fmt.Errorf("load session for %s: %w", username, err)
	}
	if session.HasSelectedPrompt(title) {
		return nil
	}
	session.SelectedPrompts = append(session.SelectedPrompts, title)
	return s.sessions.Save(username, session)
}

// Deselect removes a title from the session's selected prompts.
func (s *PromptService) Deselect(username, title string) error {
	session, err := s.sessions.Load(username)
	if err != nil {
		return fmt.Errorf("load session for %s: %w", username, err)
	}
	kept := session.SelectedPrompts[:0]
	for _, t := range session.SelectedPrompts {
		if t != title {
			kept = append(kept, t)
		}
	}
	session.SelectedPrompts = kept
	return s.sessions.Save(username, session)
}
