package core

import (
	"fmt"

	"github.com/pttwnz/elie/internal/store"
)

// SessionService covers the profile and housekeeping mutations of a session
// record: contact/personal info, API key, profile picture, chat history
// clearing and uploaded-file removal. Every mutation persists the record.
type SessionService struct {
	sessions *store.SessionStore
}

func NewSessionService(sessions *store.SessionStore) *SessionService {
	return &SessionService{sessions: sessions}
}

func (s *SessionService) Get(username string) (*store.Session, error) {
	return s.sessions.Load(username)
}

func (s *SessionService) UpdateProfile(username, contactInfo string, personal store.PersonalInfo) error {
	return s.mutate(username, func(session *store.Session) {
		session.ContactInfo = contactInfo
		session.PersonalInfo = personal
	})
}

func (s *SessionService) SetAPIKey(username, apiKey string) error {
	return s.mutate(username, func(session *store.Session) {
		session.APIKey = apiKey
	})
}

func (s *SessionService) ClearAPIKey(username string) error {
	return s.SetAPIKey(username, "")
}

func (s *SessionService) SetProfilePicture(username string, data []byte) error {
	return s.mutate(username, func(session *store.Session) {
		session.SetProfilePic(data)
	})
}

func (s *SessionService) ClearProfilePicture(username string) error {
	return s.mutate(username, func(session *store.Session) {
		session.ProfilePic = ""
	})
}

// ClearChatHistory empties the conversation. Files, prompts and profile
// fields are untouched.
func (s *SessionService) ClearChatHistory(username string) error {
	return s.mutate(username, func(session *store.Session) {
		session.ChatHistory = []store.Message{}
	})
}

// RemoveFile deletes the uploaded file at the given list position.
func (s *SessionService) RemoveFile(username string, index int) error {
	session, err := s.sessions.Load(username)
	if err != nil {
		return fmt.Errorf("load session for %s: %w", username, err)
	}
	if index < 0 || index >= len(session.Files) {
		return fmt.Errorf("no uploaded file at index %d", index)
	}
	session.Files = append(session.Files[:index], session.Files[index+1:]...)
	return s.sessions.Save(username, session)
}

func (s *SessionService) mutate(username string, fn func(*store.Session)) error {
	session, err := s.sessions.Load(username)
	if err != nil {
		return fmt.Errorf("load session for %s: %w", username, err)
	}
	fn(session)
	return s.sessions.Save(username, session)
}
