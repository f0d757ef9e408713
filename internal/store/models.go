package store

import "encoding/base64"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FileKind is the document type of an uploaded file.
type FileKind string

const (
	KindText FileKind = "text"
	KindPDF  FileKind = "pdf"
	KindDocx FileKind = "docx"
)

// Valid reports whether the kind is one the service knows how to ingest.
func (k FileKind) Valid() bool {
	switch k {
	case KindText, KindPDF, KindDocx:
		return true
	}
	return false
}

type Message struct {
	ID      string `json:"id,omitempty"` // UUID, assigned when the turn is recorded
	Role    string `json:"role"`         // "user" or "assistant"
	Content string `json:"content"`
}

type FileEntry struct {
	Name    string   `json:"name"`
	Kind    FileKind `json:"kind"`
	Content string   `json:"content"` // extracted plain text, pre-truncated
}

type PersonalInfo struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Discord   string `json:"discord,omitempty"`
	Slack     string `json:"slack,omitempty"`
}

// Session is the full per-user working state. One record per user, persisted
// after every mutation. No concurrent writers for a given user are assumed.
type Session struct {
	ChatHistory     []Message    `json:"chat_history"`
	Files           []FileEntry  `json:"files"`
	SelectedPrompts []string     `json:"selected_prompts"`
	APIKey          string       `json:"api_key"`
	ProfilePic      string       `json:"profile_pic"` // base64 image payload, "" if unset
	ContactInfo     string       `json:"contact_info"`
	PersonalInfo    PersonalInfo `json:"personal_info"`
}

// NewSession returns a session with all containers empty, the state of a
// user's first login.
func NewSession() *Session {
	return &Session{
		ChatHistory:     []Message{},
		Files:           []FileEntry{},
		SelectedPrompts: []string{},
	}
}

// HasFile reports whether a file with the given name was already ingested.
func (s *Session) HasFile(name string) bool {
	for _, f := range s.Files {
		if f.Name == name {
			return true
		}
	}
	return false
}

// HasSelectedPrompt reports whether the title is currently selected.
func (s *Session) HasSelectedPrompt(title string) bool {
	for _, t := range s.SelectedPrompts {
		if t == title {
			return true
		}
	}
	return false
}

// SetProfilePic stores the raw image bytes base64-encoded, the text-safe form
// the session file uses.
func (s *Session) SetProfilePic(data []byte) {
	s.ProfilePic = base64.StdEncoding.EncodeToString(data)
}

// ProfilePicBytes decodes the stored picture back to raw bytes.
// Returns nil when no picture is set.
func (s *Session) ProfilePicBytes() ([]byte, error) {
	if s.ProfilePic == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(s.ProfilePic)
}
