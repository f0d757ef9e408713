package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pttwnz/elie/internal/config"
	"github.com/pttwnz/elie/internal/store"
)

type accountFixture struct {
	users    *store.CredentialStore
	prompts  *store.PromptStore
	sessions *store.SessionStore
	svc      *AccountService
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	config.AppConfig.JWTSecret = "test-secret"

	dir := t.TempDir()
	users, err := store.NewCredentialStore(dir)
	require.NoError(t, err)
	prompts, err := store.NewPromptStore(dir)
	require.NoError(t, err)
	sessions, err := store.NewSessionStore(dir)
	require.NoError(t, err)

	return &accountFixture{
		users:    users,
		prompts:  prompts,
		sessions: sessions,
		svc:      NewAccountService(users, prompts, sessions),
	}
}

func TestRegisterBootstrapsPromptLibrary(t *testing.T) {
	f := newAccountFixture(t)

	require.NoError(t, f.svc.Register("alice", "pw1"))

	library, err := f.prompts.List("alice")
	require.NoError(t, err)
	require.NotNil(t, library)
	require.Empty(t, library)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newAccountFixture(t)

	require.NoError(t, f.svc.Register("alice", "pw1"))
	err := f.svc.Register("alice", "pw2")
	require.ErrorIs(t, err, ErrUsernameTaken)

	// Original credentials still work.
	_, _, err = f.svc.Login("alice", "pw1")
	require.NoError(t, err)
	_, _, err = f.svc.Login("alice", "pw2")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWrongPasswordOrUnknownUser(t *testing.T) {
	f := newAccountFixture(t)
	require.NoError(t, f.svc.Register("alice", "pw1"))

	_, _, err := f.svc.Login("alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = f.svc.Login("nobody", "pw1")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestFirstLoginCreatesEmptySession(t *testing.T) {
	f := newAccountFixture(t)
	require.NoError(t, f.svc.Register("alice", "pw1"))

	session, token, err := f.svc.Login("alice", "pw1")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Empty(t, session.ChatHistory)
	require.Empty(t, session.Files)
	require.Empty(t, session.SelectedPrompts)
}

func TestLoginLoadsPersistedSession(t *testing.T) {
	f := newAccountFixture(t)
	require.NoError(t, f.svc.Register("alice", "pw1"))

	session, _, err := f.svc.Login("alice", "pw1")
	require.NoError(t, err)
	session.APIKey = "sk-test"
	require.NoError(t, f.sessions.Save("alice", session))

	// Logout discards working memory; the persisted copy survives the next login.
	again, _, err := f.svc.Login("alice", "pw1")
	require.NoError(t, err)
	require.Equal(t, "sk-test", again.APIKey)
}

// TestFullFlow walks register → failed login → login → ingest → grounded ask,
// checking the stored state at each step.
func TestFullFlow(t *testing.T) {
	f := newAccountFixture(t)

	require.NoError(t, f.svc.Register("alice", "pw1"))

	_, _, err := f.svc.Login("alice", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	session, _, err := f.svc.Login("alice", "pw1")
	require.NoError(t, err)
	require.Empty(t, session.Files)
	require.Empty(t, session.ChatHistory)
	session.APIKey = "sk-test"
	require.NoError(t, f.sessions.Save("alice", session))

	ingest := NewIngestService(f.sessions, passthroughExtract)
	_, err = ingest.IngestBatch("alice", session, []Upload{
		{Name: "f.txt", Kind: store.KindText, Data: []byte("hello world")},
	})
	require.NoError(t, err)
	require.Equal(t, []store.FileEntry{
		{Name: "f.txt", Kind: store.KindText, Content: "hello world"},
	}, session.Files)

	completer := &fakeCompleter{reply: "hi"}
	chat := NewChatService(f.sessions, f.prompts, NewAssembler(&fakeLookup{}), completer)

	reply, err := chat.Ask(context.Background(), "alice", session, AskRequest{
		Question: "what?",
		Mode:     ModeGrounded,
	})
	require.NoError(t, err)
	require.Equal(t, "hi", reply)

	require.Len(t, completer.messages, 3)
	require.Equal(t, RoleSystem, completer.messages[0].Role)
	require.Contains(t, completer.messages[1].Content, "Contenido")
	require.Contains(t, completer.messages[1].Content, "hello world")
	require.Equal(t, ChatMessage{Role: store.RoleUser, Content: "what?"}, completer.messages[2])

	loaded, err := f.sessions.Load("alice")
	require.NoError(t, err)
	require.Len(t, loaded.ChatHistory, 2)
	require.Equal(t, "what?", loaded.ChatHistory[0].Content)
	require.Equal(t, "hi", loaded.ChatHistory[1].Content)
}
